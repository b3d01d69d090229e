package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// EmergencyContact is a stored (name, phone) pair a user designates to
// receive SOS notifications. Contact order is insertion order and is kept
// stable for display.
type EmergencyContact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation,omitempty"`
}

// User is the profile owning emergency contacts.
type User struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Email             string             `json:"email,omitempty"`
	Phone             string             `json:"phone"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

// ContactPhones returns the contacts' phone numbers in contact order.
func (u User) ContactPhones() []string {
	phones := make([]string, 0, len(u.EmergencyContacts))
	for _, c := range u.EmergencyContacts {
		phones = append(phones, c.Phone)
	}
	return phones
}

// Validate checks the contact's name and phone number.
func (c EmergencyContact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("contact name is required")
	}
	return ValidatePhone(c.Phone)
}

// ValidatePhone checks that phone contains 10 to 15 digits.
func ValidatePhone(phone string) error {
	digits := digitsOf(phone)
	if len(digits) < 10 || len(digits) > 15 {
		return fmt.Errorf("phone number must have 10 to 15 digits, got %q", phone)
	}
	return nil
}

// NormalizePhone coerces a phone number towards E.164 form. Numbers already
// carrying a country code keep it; bare 10-digit numbers are returned
// digits-only for the transport to prefix. Unrecognized shapes are returned
// unchanged.
func NormalizePhone(phone string) string {
	digits := digitsOf(phone)
	switch {
	case strings.HasPrefix(strings.TrimSpace(phone), "+") && len(digits) >= 10:
		return "+" + digits
	case len(digits) >= 11 && len(digits) <= 15:
		return "+" + digits
	case len(digits) == 10:
		return digits
	}
	return phone
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
