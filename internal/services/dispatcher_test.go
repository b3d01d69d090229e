package services_test

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/rakshaapp/raksha-agent/internal/services"
	"github.com/rakshaapp/raksha-agent/internal/utils"
	"github.com/rakshaapp/raksha-agent/pkg/sms"
	"github.com/rakshaapp/raksha-agent/tests/mocks"
)

func newDispatcher(t *testing.T, messenger sms.Messenger, dedup bool) *services.Dispatcher {
	t.Helper()
	pool := utils.NewWorkerPool(4)
	t.Cleanup(pool.Shutdown)
	return services.NewDispatcher(messenger, pool, dedup, zerolog.Nop())
}

func TestBroadcast_NoRecipients(t *testing.T) {
	messenger := new(mocks.MockMessenger)
	d := newDispatcher(t, messenger, false)

	err := d.Broadcast(nil, "help")
	assert.ErrorIs(t, err, services.ErrNoRecipients)
	messenger.AssertNotCalled(t, "Send")
}

func TestBroadcast_TransportUnavailable(t *testing.T) {
	messenger := new(mocks.MockMessenger)
	messenger.On("IsAvailable").Return(false)
	d := newDispatcher(t, messenger, false)

	err := d.Broadcast([]string{"+919876543210"}, "help")
	assert.ErrorIs(t, err, sms.ErrTransportUnavailable)
	messenger.AssertNotCalled(t, "Send")
}

func TestBroadcast_FanOutKeepsDuplicates(t *testing.T) {
	messenger := new(mocks.MockMessenger)
	messenger.On("IsAvailable").Return(true)
	messenger.On("Send", "+919876543210", "help").Return(nil)
	messenger.On("Send", "112", "help").Return(nil)

	d := newDispatcher(t, messenger, false)

	err := d.Broadcast([]string{"+919876543210", "112", "+919876543210"}, "help")
	assert.NoError(t, err)
	messenger.AssertNumberOfCalls(t, "Send", 3)
}

func TestBroadcast_DedupCollapsesDuplicates(t *testing.T) {
	messenger := new(mocks.MockMessenger)
	messenger.On("IsAvailable").Return(true)
	messenger.On("Send", "+919876543210", "help").Return(nil)
	messenger.On("Send", "112", "help").Return(nil)

	d := newDispatcher(t, messenger, true)

	err := d.Broadcast([]string{"+919876543210", "112", "+919876543210"}, "help")
	assert.NoError(t, err)
	messenger.AssertNumberOfCalls(t, "Send", 2)
}

func TestBroadcast_PartialFailure(t *testing.T) {
	sendErr := errors.New("carrier rejected")

	messenger := new(mocks.MockMessenger)
	messenger.On("IsAvailable").Return(true)
	messenger.On("Send", "+919876543210", "help").Return(nil)
	messenger.On("Send", "112", "help").Return(sendErr)

	d := newDispatcher(t, messenger, false)

	err := d.Broadcast([]string{"+919876543210", "112"}, "help")
	assert.ErrorIs(t, err, sendErr)
	messenger.AssertNumberOfCalls(t, "Send", 2)
}
