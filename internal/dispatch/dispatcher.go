package dispatch

import (
	"crypto/subtle"
	"fmt"

	"github.com/nerrad567/gray-logic-alarm/internal/alarm"
)

// LockoutPolicy selects which commands are refused while the panel is
// triggered or disabled.
type LockoutPolicy int

const (
	// LockoutArmOnly refuses only the arm variants.
	LockoutArmOnly LockoutPolicy = iota

	// LockoutAllCommands refuses every command, DISARM and PANIC included.
	LockoutAllCommands
)

func (p LockoutPolicy) String() string {
	if p == LockoutAllCommands {
		return "all_commands"
	}
	return "arm_only"
}

// ParseLockoutPolicy parses "arm_only" or "all_commands". Empty means arm_only.
func ParseLockoutPolicy(s string) (LockoutPolicy, error) {
	switch s {
	case "", "arm_only":
		return LockoutArmOnly, nil
	case "all_commands":
		return LockoutAllCommands, nil
	default:
		return LockoutArmOnly, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Request carries everything Dispatch needs. It is built per message.
type Request struct {
	Topic        string
	Command      alarm.Command
	Delay        int
	CurrentState alarm.State

	// ProvidedCode is nil when the message carried no code.
	ProvidedCode *string

	// ConfiguredCode is nil or empty when no code is required.
	ConfiguredCode *string
}

// Action is a validated command handed to the alarm core.
type Action struct {
	Command alarm.Command `json:"command"`

	// Delay is the requested delay in seconds, -1 when unspecified.
	Delay int `json:"delay"`
}

// Dispatcher validates commands. It holds no mutable state and is safe for
// concurrent use.
type Dispatcher struct {
	commandTopic string
	policy       LockoutPolicy
}

// New creates a Dispatcher accepting commands on commandTopic.
func New(commandTopic string, policy LockoutPolicy) *Dispatcher {
	return &Dispatcher{commandTopic: commandTopic, policy: policy}
}

// Policy returns the lockout policy in force.
func (d *Dispatcher) Policy() LockoutPolicy { return d.policy }

// Dispatch validates req and returns the Action to apply, or a *RejectedError.
func (d *Dispatcher) Dispatch(req Request) (Action, error) {
	reject := func(r Reason) (Action, error) {
		return Action{}, &RejectedError{Reason: r, Command: req.Command, Topic: req.Topic}
	}

	if req.Topic != d.commandTopic {
		return reject(ReasonUnrecognized)
	}

	if req.ConfiguredCode != nil && *req.ConfiguredCode != "" {
		if req.ProvidedCode == nil {
			return reject(ReasonNoCode)
		}
		if subtle.ConstantTimeCompare([]byte(*req.ProvidedCode), []byte(*req.ConfiguredCode)) != 1 {
			return reject(ReasonInvalidCode)
		}
	}

	if d.lockedOut(req.Command, req.CurrentState) {
		return reject(ReasonCommandNotAllowed)
	}

	return Action{Command: req.Command, Delay: req.Delay}, nil
}

func (d *Dispatcher) lockedOut(cmd alarm.Command, state alarm.State) bool {
	if !state.Locked() {
		return false
	}
	return d.policy == LockoutAllCommands || cmd.IsArm()
}

// Code returns a pointer to s, or nil when s is empty.
func Code(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
