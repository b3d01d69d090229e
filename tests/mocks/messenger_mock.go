package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockMessenger is a mock implementation of the sms.Messenger interface
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) IsAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockMessenger) Send(recipient string, text string) error {
	args := m.Called(recipient, text)
	return args.Error(0)
}
