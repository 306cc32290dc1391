package domain

import (
	"errors"
	"fmt"
)

// Gateway error taxonomy. Transport status codes are assigned by the API layer.
var (
	ErrForbidden               = errors.New("access forbidden")
	ErrUnauthenticated         = errors.New("unauthenticated")
	ErrInvalidRequest          = errors.New("invalid request")
	ErrUserNotFound            = errors.New("user not found")
	ErrMisconfiguredDependency = errors.New("identity provider is not configured")
	ErrDependency              = errors.New("identity provider request failed")
	ErrProviderUnavailable     = errors.New("identity provider unavailable")
)

// ErrUnsupportedMode is a recognised but unimplemented mode. It matches
// ErrInvalidRequest under errors.Is so callers that only branch on invalid
// input still see it as a 400.
var ErrUnsupportedMode = fmt.Errorf("%w: mode is not supported", ErrInvalidRequest)

// DependencyError wraps a failed identity provider call.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + ErrDependency.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *DependencyError) Unwrap() error { return e.Err }

// Is makes every DependencyError match ErrDependency.
func (e *DependencyError) Is(target error) bool { return target == ErrDependency }

// Detail returns the underlying provider message.
func (e *DependencyError) Detail() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}
