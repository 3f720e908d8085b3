package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when the requested operation is
	// illegal given the expense's current status.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrValidation is returned for malformed input, including empty
	// rejection justifications and insufficient actor roles.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned when the referenced expense does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a concurrent modification is detected
	// during a status transition.
	ErrConflict = errors.New("conflict")

	// ErrAttachment is returned when storing a proof file fails.
	ErrAttachment = errors.New("attachment error")
)
