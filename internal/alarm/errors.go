package alarm

import "errors"

// Sentinel errors for vocabulary parsing. Use errors.Is to check them.
var (
	// ErrUnknownSensorKind is returned when a sensor kind is not in the closed set.
	ErrUnknownSensorKind = errors.New("alarm: unknown sensor kind")

	// ErrUnknownCommand is returned when a panel command is not recognised.
	ErrUnknownCommand = errors.New("alarm: unknown command")

	// ErrUnknownState is returned when a panel state is not recognised.
	ErrUnknownState = errors.New("alarm: unknown state")

	// ErrUnknownEvent is returned when a panel event is not recognised.
	ErrUnknownEvent = errors.New("alarm: unknown event")

	// ErrUnknownPanelAction is returned when a panel action is not recognised.
	ErrUnknownPanelAction = errors.New("alarm: unknown panel action")
)
