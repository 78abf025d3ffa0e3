// Package warnings persists the "last warning" timestamp of each user.
//
// A store holds at most one record per identity. Identities are normalized
// (trimmed, lower-cased) by every implementation, so callers can pass the
// name exactly as it was seen on the wire.
package warnings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CollectionName is the table/collection holding the records
const CollectionName = "warnings"

// Store is the persistence contract used by the moderation engine
type Store interface {
	// Get returns the stored timestamp and true, or false when there is no record
	Get(ctx context.Context, identity string) (time.Time, bool, error)
	// Upsert sets or overwrites the record for identity
	Upsert(ctx context.Context, identity string, at time.Time) error
	// Delete removes the record for identity; a missing record is not an error
	Delete(ctx context.Context, identity string) error
}

// HealthChecker is implemented by stores that can report backend health
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NormalizeIdentity returns the comparison key for a user identity
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// StorageError reports a failed store operation
type StorageError struct {
	Op       string
	Identity string
	Err      error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("warnings: %s %q: %v", e.Op, e.Identity, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err is or wraps a StorageError
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

func storageErr(op, identity string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Identity: identity, Err: err}
}
