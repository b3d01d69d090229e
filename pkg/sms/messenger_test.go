package sms_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/rakshaapp/raksha-agent/pkg/sms"
	"github.com/rakshaapp/raksha-agent/tests/mocks"
)

const gatewayTopic = "raksha/sms/outbound"

func TestBridgeMessenger_UnavailableWhenDisconnected(t *testing.T) {
	mqttClient := new(mocks.MockMQTTClient)
	mqttClient.On("IsConnectionOpen").Return(false)

	m := sms.NewBridgeMessenger(gatewayTopic, 1, mqttClient, zerolog.Nop())

	assert.False(t, m.IsAvailable())
	err := m.Send("+919876543210", "help")
	assert.ErrorIs(t, err, sms.ErrTransportUnavailable)
	mqttClient.AssertNotCalled(t, "Publish")
}

func TestBridgeMessenger_PublishesSendRequest(t *testing.T) {
	mqttClient := new(mocks.MockMQTTClient)
	mqttClient.On("IsConnectionOpen").Return(true)

	var payload []byte
	mqttClient.On("Publish", gatewayTopic, byte(1), false, mock.Anything).
		Run(func(args mock.Arguments) {
			payload = args.Get(3).([]byte)
		}).
		Return(mocks.NewSucceededToken())

	m := sms.NewBridgeMessenger(gatewayTopic, 1, mqttClient, zerolog.Nop())

	assert.NoError(t, m.Send("+919876543210", "help"))

	var req struct {
		Recipient string `json:"recipient"`
		Text      string `json:"text"`
	}
	assert.NoError(t, json.Unmarshal(payload, &req))
	assert.Equal(t, "+919876543210", req.Recipient)
	assert.Equal(t, "help", req.Text)
}

func TestBridgeMessenger_PublishFailure(t *testing.T) {
	pubErr := errors.New("broker rejected publish")

	mqttClient := new(mocks.MockMQTTClient)
	mqttClient.On("IsConnectionOpen").Return(true)
	mqttClient.On("Publish", gatewayTopic, byte(1), false, mock.Anything).
		Return(mocks.NewFailedToken(pubErr))

	m := sms.NewBridgeMessenger(gatewayTopic, 1, mqttClient, zerolog.Nop())

	err := m.Send("+919876543210", "help")
	assert.ErrorIs(t, err, pubErr)
}
