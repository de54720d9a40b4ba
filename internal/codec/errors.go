package codec

import (
	"errors"
	"fmt"
)

// ErrDecode matches every *DecodeError via errors.Is.
var ErrDecode = errors.New("codec: decode error")

// DecodeError describes a payload that could not be decoded where strict
// decoding was requested.
type DecodeError struct {
	// Field is the payload key at fault, empty for structural problems.
	Field  string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := "codec: " + e.Reason
	if e.Field != "" {
		msg = fmt.Sprintf("codec: field %q: %s", e.Field, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports whether target is ErrDecode.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
