package driftsquares

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBackend is returned by Run when no backend was selected.
	ErrNoBackend = errors.New("driftsquares: no backend installed")

	// ErrMultipleBackends is returned when a second, different backend is selected.
	ErrMultipleBackends = errors.New("driftsquares: multiple backends installed")
)

// GenerationError reports invalid scene configuration. It is raised before
// the frame loop starts and no partial Scene accompanies it.
type GenerationError struct {
	Field  string
	Reason string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation: invalid %s: %s", e.Field, e.Reason)
}

// BackendError wraps any failure coming from the rendering backend.
// The underlying error is opaque to the core and is never retried.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func backendErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	return &BackendError{Op: op, Err: err}
}
