package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/rakshaapp/raksha-agent/pkg/geolocation"
)

// MockProvider is a mock implementation of the geolocation.Provider interface
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) RequestPermission() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockProvider) ServicesEnabled() (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}

func (m *MockProvider) CurrentPosition() (geolocation.Position, error) {
	args := m.Called()
	return args.Get(0).(geolocation.Position), args.Error(1)
}

func (m *MockProvider) Close() error {
	args := m.Called()
	return args.Error(0)
}
