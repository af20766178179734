package domain

import "fmt"

// ValidationError rejects malformed input synchronously; nothing is
// persisted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Reason)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError surfaces an unknown id to the caller; no retry.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// StateError rejects an operation the current lifecycle state does not
// permit; callers must not retry blindly.
type StateError struct {
	Resource  string
	State     string
	Operation string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s in state %q does not permit %s", e.Resource, e.State, e.Operation)
}

func NewStateError(resource, state, operation string) error {
	return &StateError{Resource: resource, State: state, Operation: operation}
}
