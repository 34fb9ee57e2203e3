package probe

import "errors"

var (
	// ErrUnhealthy is returned when the service does not answer /healthz.
	ErrUnhealthy = errors.New("service unhealthy")
	// ErrMismatch is returned when a response breaks a filter invariant.
	ErrMismatch = errors.New("probe mismatch")
)
