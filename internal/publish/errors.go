package publish

import "errors"

var (
	// ErrPublish wraps any broker or encoding failure.
	ErrPublish = errors.New("publish: failed")

	// ErrInvalidSensorKind is returned for an empty sensor kind.
	ErrInvalidSensorKind = errors.New("publish: sensor kind cannot be empty")
)
