package store

import "errors"

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("event not found")

// ErrInvalidTransition is returned when a status update violates the
// configured transition policy.
var ErrInvalidTransition = errors.New("invalid status transition")
