package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/rakshaapp/raksha-agent/internal/models"
)

// MockUserStore is a mock implementation of the profile.UserStoreInterface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) LoadUser() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUserStore) GetUserID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockUserStore) GetUser() models.User {
	args := m.Called()
	return args.Get(0).(models.User)
}

func (m *MockUserStore) SaveUser(u models.User) (models.User, error) {
	args := m.Called(u)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *MockUserStore) AddEmergencyContact(c models.EmergencyContact) error {
	args := m.Called(c)
	return args.Error(0)
}

func (m *MockUserStore) RemoveEmergencyContact(phone string) error {
	args := m.Called(phone)
	return args.Error(0)
}

func (m *MockUserStore) UpdateEmergencyContact(phone string, c models.EmergencyContact) error {
	args := m.Called(phone, c)
	return args.Error(0)
}
