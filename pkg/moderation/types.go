// Package moderation implements the CapsFriday policy: on Fridays, messages that are not
// written mostly in capital letters earn a warning, and a second one inside the warning
// window earns a kick.
package moderation

import (
	"context"
	"time"
)

const (
	// WarningNotice is sent privately on a first (or renewed) offense
	WarningNotice = "WARNING – It’s Friday. Use MORE CAPITAL LETTERS or face the kick."
	// KickReason is attached to the removal on a second offense inside the window
	KickReason = "IT'S CAPSLOCK FRIDAY, BITCHES"
	// DefaultWindow is how long a warning stays live
	DefaultWindow = 15 * time.Minute
)

// User identifies a chat participant. Name is the identity used for whitelist and store lookups.
type User struct {
	ID   string
	Name string
}

// Message is an inbound chat message
type Message struct {
	Sender  User
	Room    string // room the sender can be removed from
	Channel string // where the message was posted
	Text    string
}

// Actions are the outbound moderation capabilities of the chat connection
type Actions interface {
	// Notice sends a private message to the user
	Notice(ctx context.Context, to User, text string) error
	// Kick removes the user from room
	Kick(ctx context.Context, room string, user User, reason string) error
}

// Gate decides whether the policy is enforced at an instant
type Gate interface {
	Active(now time.Time) bool
}

// Outcome is what the engine did with a message
type Outcome string

const (
	OutcomeInactive    Outcome = "inactive"
	OutcomeWhitelisted Outcome = "whitelisted"
	OutcomeCompliant   Outcome = "compliant"
	OutcomeWarned      Outcome = "warned"
	OutcomeRenewed     Outcome = "renewed"
	OutcomeKicked      Outcome = "kicked"
	OutcomeAborted     Outcome = "aborted"
)

// Decision describes the handling of one message
type Decision struct {
	ID       string    `json:"id"`
	Outcome  Outcome   `json:"outcome"`
	Identity string    `json:"identity"`
	UserID   string    `json:"userId,omitempty"`
	Room     string    `json:"room,omitempty"`
	Channel  string    `json:"channel,omitempty"`
	Score    float64   `json:"score"`
	At       time.Time `json:"at"`
	// Previous is the timestamp of the warning found in the store, if any
	Previous *time.Time `json:"previous,omitempty"`
}

// Enforced reports whether the decision resulted in a notice or a kick
func (d Decision) Enforced() bool {
	switch d.Outcome {
	case OutcomeWarned, OutcomeRenewed, OutcomeKicked:
		return true
	}
	return false
}

// Observer receives every decision after it has been applied
type Observer interface {
	Observe(d Decision)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(d Decision)

func (f ObserverFunc) Observe(d Decision) { f(d) }
