package showcase

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrItemNotFound indicates a content item was not found in either backend
	ErrItemNotFound = errors.New("content item not found")

	// ErrUserNotFound indicates a user was not found
	ErrUserNotFound = errors.New("user not found")

	// ErrBackendUnavailable indicates the durable store could not serve the
	// call. Transport, authentication, query, and timeout failures are all
	// folded into this one signal so callers have a single fallback branch.
	ErrBackendUnavailable = errors.New("durable store unavailable")

	// ErrInvalidStatus indicates a status outside the moderation state set
	ErrInvalidStatus = errors.New("invalid submission status")

	// ErrInvalidCredentials indicates a failed login attempt
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a submission field that failed validation.
// It is a client error and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ItemError wraps a failed operation on a content item.
type ItemError struct {
	ItemID uuid.UUID
	Op     string
	Err    error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item operation %s failed for item %s: %v", e.Op, e.ItemID, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// StoreError wraps a failed call against a named store backend.
type StoreError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s failed on backend %s: %v", e.Op, e.Backend, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
