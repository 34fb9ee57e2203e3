package point

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package.
var (
	ErrLoad  = errors.New("dataset load failed")
	ErrParse = errors.New("dataset is not valid GeoJSON")
)

// LoadError reports a failed dataset fetch or parse. It is never retried.
type LoadError struct {
	// Source names the resource that was fetched.
	Source string
	// Status is the HTTP status code for fetch failures, 0 otherwise.
	Status int
	// Err is the underlying cause, if any.
	Err error
}

func (e *LoadError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("Nu pot încărca %s (%d)", e.Source, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("Nu pot încărca %s: %v", e.Source, e.Err)
	default:
		return fmt.Sprintf("Nu pot încărca %s", e.Source)
	}
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error { return e.Err }

// Is makes every LoadError match ErrLoad.
func (e *LoadError) Is(target error) bool { return target == ErrLoad }
