package channels

import (
	"encoding/json"

	"github.com/benmeehan/vbox-gps-agent/pkg/location"
	"github.com/benmeehan/vbox-gps-agent/pkg/mqtt"
	"github.com/rs/zerolog"
)

// MQTTChannel mirrors every sample to an MQTT topic so off-VM
// consumers can subscribe to the same feed the guest reads.
type MQTTChannel struct {
	topic      string
	qos        int
	mqttClient mqtt.MQTTClient
	logger     zerolog.Logger
}

// NewMQTTChannel creates an MQTTChannel publishing to the given topic.
func NewMQTTChannel(topic string, qos int, mqttClient mqtt.MQTTClient, logger zerolog.Logger) *MQTTChannel {
	return &MQTTChannel{
		topic:      topic,
		qos:        qos,
		mqttClient: mqttClient,
		logger:     logger,
	}
}

// Name identifies the channel in logs.
func (c *MQTTChannel) Name() string {
	return "mqtt"
}

// Publish sends the sample JSON to the configured topic.
func (c *MQTTChannel) Publish(sample location.Sample) error {
	payload, err := json.Marshal(sample)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to serialize sample for MQTT")
		return err
	}

	token := c.mqttClient.Publish(c.topic, byte(c.qos), false, payload)
	token.Wait()

	if err := token.Error(); err != nil {
		c.logger.Error().
			Err(err).
			Str("topic", c.topic).
			Msg("Failed to publish sample to MQTT")
		return err
	}

	c.logger.Debug().Str("topic", c.topic).Msg("Sample published to MQTT")
	return nil
}
