package models

import "time"

// Summary is the admin status breakdown derived from the full event list.
type Summary struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Resolved   int `json:"resolved"`
	FalseAlarm int `json:"false_alarm"`
	Today      int `json:"today"`
}

// LocationGroup is a coarse-grained cluster of SOS events sharing a rounded
// coordinate, used for hotspot visualization. Recomputed on demand, never
// persisted.
type LocationGroup struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Label     string     `json:"label"`
	Risk      string     `json:"risk"`
	Count     int        `json:"count"`
	Events    []SOSEvent `json:"events"`
}

// StatsSnapshot is the payload published to the admin stats topic.
type StatsSnapshot struct {
	Timestamp time.Time       `json:"timestamp"`
	Summary   Summary         `json:"summary"`
	Hotspots  []LocationGroup `json:"hotspots"`
}

// HelpCenter is a known assistance point (police station, hospital, shelter)
// surfaced to the user by proximity.
type HelpCenter struct {
	Name      string  `json:"name" yaml:"name"`
	Phone     string  `json:"phone" yaml:"phone"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}
