package moderation

import (
	"strings"

	"github.com/PancyStudios/CapsFridayBot/pkg/warnings"
)

// Whitelist is an immutable set of normalized identities exempt from enforcement
type Whitelist struct {
	entries map[string]struct{}
}

// NewWhitelist builds a Whitelist from raw identities. Blank entries are ignored.
func NewWhitelist(identities ...string) *Whitelist {
	w := &Whitelist{entries: make(map[string]struct{}, len(identities))}
	for _, id := range identities {
		if key := warnings.NormalizeIdentity(id); key != "" {
			w.entries[key] = struct{}{}
		}
	}
	return w
}

// ParseWhitelist builds a Whitelist from a comma separated list
func ParseWhitelist(csv string) *Whitelist {
	return NewWhitelist(strings.Split(csv, ",")...)
}

// Contains reports whether any of the given identities is whitelisted
func (w *Whitelist) Contains(identities ...string) bool {
	if w == nil {
		return false
	}
	for _, id := range identities {
		if key := warnings.NormalizeIdentity(id); key != "" {
			if _, ok := w.entries[key]; ok {
				return true
			}
		}
	}
	return false
}

// Len returns the number of entries
func (w *Whitelist) Len() int {
	if w == nil {
		return 0
	}
	return len(w.entries)
}
