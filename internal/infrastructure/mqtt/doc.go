// Package mqtt provides MQTT client connectivity for the alarm panel.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing
//   - Topic subscriptions, restored after reconnect
//   - Availability reporting with a retained Last Will and Testament
//
// Inbound messages are delivered as Message values carrying the topic,
// payload and a message ID. QoS 0 deliveries have no broker packet ID, so
// one is generated.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe("home/alarm/set", 0, func(msg mqtt.Message) error {
//	    return router.Handle(msg.Topic, msg.Payload, msg.ID)
//	})
//
//	client.Publish("home/alarm", []byte(`{"state":"armed_away"}`), 0, false)
package mqtt
