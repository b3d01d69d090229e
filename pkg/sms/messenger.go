package sms

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rakshaapp/raksha-agent/pkg/mqtt"
)

// ErrTransportUnavailable is returned when the messaging transport cannot
// send in the current environment.
var ErrTransportUnavailable = errors.New("sms transport unavailable")

// Messenger defines the device messaging primitive used for SOS fan-out.
type Messenger interface {
	// IsAvailable reports whether the transport can send right now.
	IsAvailable() bool

	// Send delivers text to a single recipient. One call per recipient;
	// callers own fan-out.
	Send(recipient string, text string) error
}

var _ Messenger = (*BridgeMessenger)(nil)

// sendRequest is the payload published to the SMS gateway topic.
type sendRequest struct {
	Recipient string    `json:"recipient"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// BridgeMessenger sends SMS by publishing send requests to a gateway topic
// on the broker. The gateway owns carrier delivery; from the agent's side a
// send is complete once the broker accepts the publish.
type BridgeMessenger struct {
	topic      string
	qos        int
	mqttClient mqtt.MQTTClient
	logger     zerolog.Logger
}

// NewBridgeMessenger creates a messenger publishing to the given gateway topic.
func NewBridgeMessenger(topic string, qos int, mqttClient mqtt.MQTTClient, logger zerolog.Logger) *BridgeMessenger {
	return &BridgeMessenger{
		topic:      topic,
		qos:        qos,
		mqttClient: mqttClient,
		logger:     logger,
	}
}

// IsAvailable reports whether the broker connection is open.
func (b *BridgeMessenger) IsAvailable() bool {
	return b.mqttClient != nil && b.mqttClient.IsConnectionOpen()
}

// Send publishes a single send request to the gateway topic.
func (b *BridgeMessenger) Send(recipient string, text string) error {
	if !b.IsAvailable() {
		return ErrTransportUnavailable
	}

	payload, err := json.Marshal(sendRequest{
		Recipient: recipient,
		Text:      text,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to serialize send request: %w", err)
	}

	token := b.mqttClient.Publish(b.topic, byte(b.qos), false, payload)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish send request: %w", token.Error())
	}

	b.logger.Debug().
		Str("recipient", recipient).
		Str("topic", b.topic).
		Msg("SMS send request published")
	return nil
}
