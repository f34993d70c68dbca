package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the store has no document with the given identity.
var ErrNotFound = errors.New("document not found")

// ValidationError reports a precondition violated before any remote call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StoreWriteError wraps a rejected or timed-out remote write. The local view
// is unaffected: it only ever changes via subscription deliveries.
type StoreWriteError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// AuditError reports that the activity write failed after the primary
// mutation was already committed. The primary result still stands; callers
// may retry the audit without re-mutating.
type AuditError struct {
	Err error
}

func (e *AuditError) Error() string {
	return fmt.Sprintf("mutation committed but activity write failed: %v", e.Err)
}

func (e *AuditError) Unwrap() error { return e.Err }

// SubscriptionError is a stream-level fault on one push channel. The tasks
// and activities subscriptions fail independently.
type SubscriptionError struct {
	Collection string
	Err        error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscription %s: %v", e.Collection, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }
