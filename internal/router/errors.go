package router

import "errors"

var (
	// ErrMissingDependency is returned by New when a required dependency is nil.
	ErrMissingDependency = errors.New("router: missing dependency")

	// ErrSubscribe wraps a failed subscription during Start.
	ErrSubscribe = errors.New("router: subscribe failed")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("router: already started")
)
