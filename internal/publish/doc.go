// Package publish encodes alarm state, events and sensor values and hands
// them to the broker.
//
// Every publish uses QoS 0 and retained=false. The Publisher does not wait
// for acknowledgment and does not retry; failures are logged, counted and
// returned to the caller.
//
// Publisher also satisfies the controller listener contract, so it can be
// registered directly on the alarm core:
//
//	pub := publish.New(broker, registry, publish.WithLogger(log))
//	ctrl.AddListener(pub)
package publish
