package profile

import (
	"fmt"
	"os"

	"github.com/rakshaapp/raksha-agent/internal/models"
	"github.com/rakshaapp/raksha-agent/pkg/file"
)

// UserStoreInterface defines methods for managing the local user profile and
// its emergency contacts. Contacts are owned by the profile user; mutation
// goes through this interface only.
type UserStoreInterface interface {
	LoadUser() error
	GetUserID() string
	GetUser() models.User
	SaveUser(u models.User) (models.User, error)
	AddEmergencyContact(c models.EmergencyContact) error
	RemoveEmergencyContact(phone string) error
	UpdateEmergencyContact(phone string, c models.EmergencyContact) error
}

// UserStore manages the user profile and its associated file persistence.
type UserStore struct {
	ProfileFile string
	User        models.User
	fileOps     file.FileOperations
}

// NewUserStore initializes a new UserStore instance.
func NewUserStore(filePath string, fileOps file.FileOperations) UserStoreInterface {
	return &UserStore{
		ProfileFile: filePath,
		fileOps:     fileOps,
	}
}

// LoadUser reads the profile from the file and populates the User field. A
// missing file yields an empty profile.
func (s *UserStore) LoadUser() error {
	err := s.fileOps.ReadJsonFile(s.ProfileFile, &s.User)
	if err != nil {
		if os.IsNotExist(err) {
			s.User = models.User{}
			return nil
		}
		return err
	}
	return nil
}

// GetUserID returns the current user's id.
func (s *UserStore) GetUserID() string {
	return s.User.ID
}

// GetUser returns the current user profile.
func (s *UserStore) GetUser() models.User {
	return s.User
}

// SaveUser merges the non-empty fields of u into the stored profile and
// persists it.
func (s *UserStore) SaveUser(u models.User) (models.User, error) {
	if u.ID != "" {
		s.User.ID = u.ID
	}
	if u.Name != "" {
		s.User.Name = u.Name
	}
	if u.Email != "" {
		s.User.Email = u.Email
	}
	if u.Phone != "" {
		s.User.Phone = models.NormalizePhone(u.Phone)
	}
	if u.EmergencyContacts != nil {
		s.User.EmergencyContacts = u.EmergencyContacts
	}
	if !u.CreatedAt.IsZero() {
		s.User.CreatedAt = u.CreatedAt
	}

	if err := s.persist(); err != nil {
		return models.User{}, err
	}
	return s.User, nil
}

// AddEmergencyContact validates, normalizes, and appends a contact. Order of
// insertion is preserved.
func (s *UserStore) AddEmergencyContact(c models.EmergencyContact) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.Phone = models.NormalizePhone(c.Phone)

	s.User.EmergencyContacts = append(s.User.EmergencyContacts, c)
	return s.persist()
}

// RemoveEmergencyContact deletes the first contact matching phone.
func (s *UserStore) RemoveEmergencyContact(phone string) error {
	normalized := models.NormalizePhone(phone)
	for i, c := range s.User.EmergencyContacts {
		if c.Phone == normalized || c.Phone == phone {
			s.User.EmergencyContacts = append(s.User.EmergencyContacts[:i], s.User.EmergencyContacts[i+1:]...)
			return s.persist()
		}
	}
	return fmt.Errorf("no emergency contact with phone %q", phone)
}

// UpdateEmergencyContact replaces the contact matching phone, keeping its
// position in the list.
func (s *UserStore) UpdateEmergencyContact(phone string, c models.EmergencyContact) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.Phone = models.NormalizePhone(c.Phone)

	normalized := models.NormalizePhone(phone)
	for i, existing := range s.User.EmergencyContacts {
		if existing.Phone == normalized || existing.Phone == phone {
			s.User.EmergencyContacts[i] = c
			return s.persist()
		}
	}
	return fmt.Errorf("no emergency contact with phone %q", phone)
}

func (s *UserStore) persist() error {
	return s.fileOps.WriteJsonFile(s.ProfileFile, s.User)
}
