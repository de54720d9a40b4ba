package mqtt

import (
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Maximum payload size for MQTT messages (1MB).
const maxPayloadSize = 1 << 20

// Publish sends a message to the specified MQTT topic.
//
// QoS Levels:
//   - 0: At most once (fire and forget), used for alarm state and events
//   - 1: At least once
//   - 2: Exactly once
//
// QoS 0 publishes are handed to paho without waiting; a delivery failure is
// logged asynchronously. Higher QoS levels wait up to defaultPublishTimeout
// for the acknowledgment. Nothing is retried here.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := exactTopic(topic); err != nil {
		return err
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if qos == 0 {
		go c.watchToken(topic, token)
		return nil
	}
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// watchToken logs the outcome of a fire-and-forget publish.
func (c *Client) watchToken(topic string, token pahomqtt.Token) {
	if !token.WaitTimeout(defaultPublishTimeout) {
		return
	}
	if err := token.Error(); err != nil {
		if logger := c.getLogger(); logger != nil {
			logger.Warn("MQTT publish failed", "topic", topic, "error", err)
		}
	}
}
