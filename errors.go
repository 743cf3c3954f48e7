package main

import (
	"errors"

	"github.com/cpmech/gosl/io"
)

// Engine errors.
var (
	// ErrValidation matches every ValidationError.
	ErrValidation = errors.New("soundsim: invalid parameter")

	// ErrResource matches every ResourceError.
	ErrResource = errors.New("soundsim: resource unavailable")

	// ErrNotInitialized is returned by Source before Init.
	ErrNotInitialized = errors.New("soundsim: simulator not initialized")

	// ErrNotRunning is returned by Step before Source.
	ErrNotRunning = errors.New("soundsim: no source injected")
)

// ValidationError reports a parameter that violates a physical or numerical
// bound.
type ValidationError struct {
	Field  string
	Value  float64
	Limit  float64
	Unit   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Unit == "" {
		return io.Sf("%s is %s", e.Field, e.Reason)
	}
	return io.Sf("%s %g %s is %s (limit %g %s)", e.Field, e.Value, e.Unit, e.Reason, e.Limit, e.Unit)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ResourceError reports external input or output that could not be used.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return io.Sf("cannot use %q: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

func (e *ResourceError) Is(target error) bool {
	return target == ErrResource
}
