package models

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of an SOS event.
type Status string

const (
	StatusActive     Status = "active"
	StatusResolved   Status = "resolved"
	StatusFalseAlarm Status = "false_alarm"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusResolved, StatusFalseAlarm:
		return true
	}
	return false
}

// Terminal reports whether s is a terminal state. Terminal events are never
// re-opened.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusFalseAlarm
}

// SOSEvent is a single emergency-alert record. Events form an append-only
// log: they are created once, their status is updated, and they are never
// deleted.
type SOSEvent struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Location  LocationSample `json:"location"`
	Message   string         `json:"message"`
	CreatedAt time.Time      `json:"created_at"`
	Status    Status         `json:"status"`
}

const maxSOSMessageLength = 500

// ValidateSOSMessage checks that an SOS message is non-empty and within the
// allowed length.
func ValidateSOSMessage(message string) error {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return fmt.Errorf("sos message is required")
	}
	if len(trimmed) > maxSOSMessageLength {
		return fmt.Errorf("sos message exceeds %d characters", maxSOSMessageLength)
	}
	return nil
}

// ComposeSOSMessage renders the SOS alert text sent to recipients.
func ComposeSOSMessage(userName string, location LocationSample, at time.Time) string {
	return fmt.Sprintf("SOS ALERT: %s needs immediate help at %s. Time: %s",
		userName, location.String(), at.Format(time.RFC3339))
}
