// Package daygate decides whether the moderation policy is enforced at a given instant.
// The check is zone-aware, so daylight-saving transitions move the boundary with the wall clock.
package daygate

import (
	"fmt"
	"strings"
	"time"
)

// ActiveDay is the weekday the policy is enforced on
const ActiveDay = time.Friday

// IsActiveDay reports whether ref falls on a Friday in loc. A nil loc means UTC.
func IsActiveDay(ref time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	return ref.In(loc).Weekday() == ActiveDay
}

// LoadLocation resolves an IANA zone name. An empty name resolves to UTC.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("zona horaria inválida %q: %w", name, err)
	}
	return loc, nil
}

// Gate evaluates IsActiveDay against a fixed location.
// It holds no state between calls; every call reads the instant it is given.
type Gate struct {
	loc *time.Location
}

// New creates a Gate for the given zone name
func New(zone string) (*Gate, error) {
	loc, err := LoadLocation(zone)
	if err != nil {
		return nil, err
	}
	return &Gate{loc: loc}, nil
}

// Active reports whether the policy is enforced at now
func (g *Gate) Active(now time.Time) bool {
	return IsActiveDay(now, g.Location())
}

// Location returns the zone the gate evaluates in
func (g *Gate) Location() *time.Location {
	if g == nil || g.loc == nil {
		return time.UTC
	}
	return g.loc
}

// NextChange returns the next instant after now at which Active flips.
// Used to report when enforcement starts or ends.
func (g *Gate) NextChange(now time.Time) time.Time {
	local := now.In(g.Location())
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())

	if g.Active(now) {
		return midnight.AddDate(0, 0, 1)
	}

	days := (int(ActiveDay) - int(local.Weekday()) + 7) % 7
	return midnight.AddDate(0, 0, days)
}
