package dispatch

import (
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-alarm/internal/alarm"
)

var (
	// ErrRejected matches every *RejectedError via errors.Is.
	ErrRejected = errors.New("dispatch: command rejected")

	// ErrUnknownPolicy is returned by ParseLockoutPolicy.
	ErrUnknownPolicy = errors.New("dispatch: unknown lockout policy")
)

// Reason explains why a command was rejected.
type Reason string

// Rejection reasons.
const (
	ReasonUnrecognized      Reason = "unrecognized"
	ReasonNoCode            Reason = "no_code_provided"
	ReasonInvalidCode       Reason = "invalid_code_provided"
	ReasonCommandNotAllowed Reason = "command_not_allowed"
)

// Event returns the panel event to raise for this rejection.
// Unrecognized rejections raise nothing.
func (r Reason) Event() (alarm.Event, bool) {
	switch r {
	case ReasonNoCode:
		return alarm.EventNoCode, true
	case ReasonInvalidCode:
		return alarm.EventInvalidCode, true
	case ReasonCommandNotAllowed:
		return alarm.EventCommandNotAllowed, true
	default:
		return "", false
	}
}

// RejectedError is returned by Dispatch when a command fails validation.
type RejectedError struct {
	Reason  Reason
	Command alarm.Command
	Topic   string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("dispatch: %s rejected on %q: %s", e.Command, e.Topic, e.Reason)
}

// Is reports whether target is ErrRejected.
func (e *RejectedError) Is(target error) bool { return target == ErrRejected }
