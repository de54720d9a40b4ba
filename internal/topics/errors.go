package topics

import "errors"

var (
	// ErrUnrecognized is returned by Resolve for topics outside the registry.
	// It is informational: callers log and drop the message.
	ErrUnrecognized = errors.New("topics: unrecognized topic")

	// ErrInvalidTopic is returned by New when a configured topic is empty,
	// contains a wildcard, or collides with another topic.
	ErrInvalidTopic = errors.New("topics: invalid topic configuration")
)
