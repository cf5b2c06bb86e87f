package booking

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Callers match them with errors.Is.
var (
	// ErrInvalidDate is returned when a date cannot be parsed as YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidTime is returned when a start time cannot be parsed as HH:mm.
	ErrInvalidTime = errors.New("invalid time")

	// ErrMissingField is returned when a required booking field is absent or empty.
	ErrMissingField = errors.New("missing field")

	// ErrCollaboratorUnavailable is returned when the calendar could not be reached
	// or failed while serving the request.
	ErrCollaboratorUnavailable = errors.New("calendar unavailable")

	// ErrCollaboratorRejected is returned when the calendar explicitly refused the
	// operation, e.g. because of an invalid attendee.
	ErrCollaboratorRejected = errors.New("calendar rejected request")
)

// FieldError lists the required fields that were missing from a booking request.
type FieldError struct {
	Fields []string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Is reports ErrMissingField so FieldError can be matched with errors.Is.
func (e *FieldError) Is(target error) bool {
	return target == ErrMissingField
}

// CollaboratorError wraps a failure reported by the calendar collaborator.
// Kind is either ErrCollaboratorUnavailable or ErrCollaboratorRejected.
type CollaboratorError struct {
	Op        string
	Kind      error
	Temporary bool
	Err       error
}

func (e *CollaboratorError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the underlying cause.
func (e *CollaboratorError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Transient reports whether retrying the same request later may succeed.
// Rejections are never transient.
func (e *CollaboratorError) Transient() bool {
	return e.Kind == ErrCollaboratorUnavailable && e.Temporary
}

// Unavailable builds a CollaboratorError of kind ErrCollaboratorUnavailable.
func Unavailable(op string, temporary bool, err error) error {
	return &CollaboratorError{Op: op, Kind: ErrCollaboratorUnavailable, Temporary: temporary, Err: err}
}

// Rejected builds a CollaboratorError of kind ErrCollaboratorRejected.
func Rejected(op string, err error) error {
	return &CollaboratorError{Op: op, Kind: ErrCollaboratorRejected, Err: err}
}

// IsTransient reports whether err is a collaborator failure worth retrying.
func IsTransient(err error) bool {
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return ce.Transient()
	}
	return false
}
