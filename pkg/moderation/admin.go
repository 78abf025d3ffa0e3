package moderation

import (
	"context"
	"time"

	"github.com/PancyStudios/CapsFridayBot/pkg/warnings"
)

// WarningStatus describes the stored warning of one identity
type WarningStatus struct {
	Identity  string    `json:"identity"`
	Found     bool      `json:"found"`
	IssuedAt  time.Time `json:"issuedAt,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Live      bool      `json:"live"`
}

// Status reads the warning of identity without changing it
func (e *Engine) Status(ctx context.Context, identity string) (WarningStatus, error) {
	key := warnings.NormalizeIdentity(identity)
	st := WarningStatus{Identity: key}

	unlock := e.locks.Lock(key)
	defer unlock()

	at, found, err := e.store.Get(ctx, key)
	if err != nil {
		return st, err
	}
	if !found {
		return st, nil
	}

	st.Found = true
	st.IssuedAt = at
	st.ExpiresAt = at.Add(e.window)
	st.Live = e.now().Sub(at) < e.window
	return st, nil
}

// Forgive removes the warning of identity, returning the user to a clean state
func (e *Engine) Forgive(ctx context.Context, identity string) error {
	key := warnings.NormalizeIdentity(identity)

	unlock := e.locks.Lock(key)
	defer unlock()

	return e.store.Delete(ctx, key)
}
