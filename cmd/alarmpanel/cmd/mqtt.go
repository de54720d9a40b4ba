package cmd

import (
	"github.com/nerrad567/gray-logic-alarm/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-alarm/internal/router"
)

// mqttSubscriber adapts *mqtt.Client to router.Subscriber.
type mqttSubscriber struct {
	client *mqtt.Client
}

func (a *mqttSubscriber) Subscribe(topic string, qos byte, handler func(router.InboundMessage)) error {
	return a.client.Subscribe(topic, qos, func(msg mqtt.Message) error {
		handler(toInbound(msg))
		return nil
	})
}

func (a *mqttSubscriber) Unsubscribe(topic string) error {
	return a.client.Unsubscribe(topic)
}

func toInbound(msg mqtt.Message) router.InboundMessage {
	return router.InboundMessage{
		Topic:     msg.Topic,
		Payload:   msg.Payload,
		MessageID: msg.ID,
	}
}
