package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/rakshaapp/raksha-agent/internal/models"
)

// MockLocator is a mock implementation of the services.Locator interface
type MockLocator struct {
	mock.Mock
}

func (m *MockLocator) CurrentSample() (models.LocationSample, error) {
	args := m.Called()
	return args.Get(0).(models.LocationSample), args.Error(1)
}
