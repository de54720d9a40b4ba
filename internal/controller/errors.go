package controller

import "errors"

var (
	// ErrNotAllowed is returned when the command cannot be taken from the
	// current state. The matching panel event has already been raised.
	ErrNotAllowed = errors.New("controller: command not allowed in current state")

	// ErrDisabled is returned for any command while the panel is disabled.
	ErrDisabled = errors.New("controller: panel disabled")

	// ErrUnknownCommand is returned for a command the controller cannot map.
	ErrUnknownCommand = errors.New("controller: unknown command")
)
