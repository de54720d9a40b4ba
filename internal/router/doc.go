// Package router is the subscription manager and inbound message router.
//
// BuildSubscriptions derives the deterministic subscription list from the
// topic registry. Route resolves each inbound message and hands it to the
// matching handler:
//
//	command       → codec.DecodeCommand → dispatch.Dispatcher → ActionSink
//	sensor/<kind> → codec.DecodeSensor  → SensorSink
//	config        → codec.Decode        → ConfigHandler
//	panel command → codec.DecodePanelInstructions → PanelHandler
//
// Unrecognized topics and the panel's own state/event echoes are logged at
// debug and dropped. Route never returns an error.
package router
