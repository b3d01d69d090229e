package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rakshaapp/raksha-agent/internal/models"
	"github.com/rakshaapp/raksha-agent/internal/stats"
)

func event(id string, status models.Status, createdAt time.Time, lat, lon float64) models.SOSEvent {
	return models.SOSEvent{
		ID:        id,
		UserID:    "user-1",
		Location:  models.LocationSample{Latitude: lat, Longitude: lon, CapturedAt: createdAt},
		Message:   "help",
		CreatedAt: createdAt,
		Status:    status,
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 6, 10, 18, 30, 0, 0, time.Local)
	yesterday := now.AddDate(0, 0, -1)

	events := []models.SOSEvent{
		event("1", models.StatusActive, now.Add(-time.Hour), 12.97, 77.59),
		event("2", models.StatusActive, yesterday, 12.97, 77.59),
		event("3", models.StatusActive, yesterday, 12.97, 77.59),
		event("4", models.StatusResolved, yesterday, 12.97, 77.59),
		event("5", models.StatusResolved, yesterday.Add(-time.Hour), 12.97, 77.59),
		event("6", models.StatusFalseAlarm, yesterday, 12.97, 77.59),
	}

	summary := stats.Summarize(events, now)
	assert.Equal(t, 6, summary.Total)
	assert.Equal(t, 3, summary.Active)
	assert.Equal(t, 2, summary.Resolved)
	assert.Equal(t, 1, summary.FalseAlarm)
	assert.Equal(t, 1, summary.Today)
}

func TestSummarize_Empty(t *testing.T) {
	summary := stats.Summarize(nil, time.Now())
	assert.Equal(t, models.Summary{}, summary)
}

func TestGroupByLocation_JitterCollapses(t *testing.T) {
	now := time.Now()
	events := []models.SOSEvent{
		event("1", models.StatusActive, now, 12.9716, 77.5946),
		event("2", models.StatusActive, now, 12.97161, 77.59462),
	}

	groups := stats.GroupByLocation(events)
	assert.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, 12.972, groups[0].Latitude)
	assert.Equal(t, 77.595, groups[0].Longitude)
	// Members keep source order.
	assert.Equal(t, "1", groups[0].Events[0].ID)
	assert.Equal(t, "2", groups[0].Events[1].ID)
}

func TestGroupByLocation_SortAndTieBreak(t *testing.T) {
	now := time.Now()
	events := []models.SOSEvent{
		// First-seen group "A" with one event, then "B" with two, then "C" with one.
		event("a1", models.StatusActive, now, 10.0, 10.0),
		event("b1", models.StatusActive, now, 20.0, 20.0),
		event("b2", models.StatusActive, now, 20.0, 20.0),
		event("c1", models.StatusActive, now, 30.0, 30.0),
	}

	groups := stats.GroupByLocation(events)
	assert.Len(t, groups, 3)
	// Largest first, ties keep first-encountered order.
	assert.Equal(t, 20.0, groups[0].Latitude)
	assert.Equal(t, 10.0, groups[1].Latitude)
	assert.Equal(t, 30.0, groups[2].Latitude)
}

func TestGroupByLocation_Empty(t *testing.T) {
	assert.Empty(t, stats.GroupByLocation(nil))
}

func TestRiskLabel_Boundaries(t *testing.T) {
	assert.Equal(t, "Safe", stats.RiskLabel(1))
	assert.Equal(t, "Low", stats.RiskLabel(2))
	assert.Equal(t, "Low", stats.RiskLabel(4))
	assert.Equal(t, "Medium", stats.RiskLabel(5))
	assert.Equal(t, "Medium", stats.RiskLabel(9))
	assert.Equal(t, "High", stats.RiskLabel(10))
	assert.Equal(t, "High", stats.RiskLabel(50))
}

func TestGroupByLocation_RiskAssigned(t *testing.T) {
	now := time.Now()
	var events []models.SOSEvent
	for i := 0; i < 5; i++ {
		events = append(events, event("x", models.StatusActive, now, 12.97, 77.59))
	}

	groups := stats.GroupByLocation(events)
	assert.Len(t, groups, 1)
	assert.Equal(t, "Medium", groups[0].Risk)
}

func TestNearbyHelpCenters(t *testing.T) {
	from := models.LocationSample{Latitude: 12.9716, Longitude: 77.5946}
	centers := []models.HelpCenter{
		{Name: "Far Station", Latitude: 13.5, Longitude: 78.5},
		{Name: "Hospital", Latitude: 12.9667, Longitude: 77.5873},
		{Name: "Police Station", Latitude: 12.9720, Longitude: 77.5950},
	}

	nearby := stats.NearbyHelpCenters(centers, from, 5)
	assert.Len(t, nearby, 2)
	// Nearest first.
	assert.Equal(t, "Police Station", nearby[0].Name)
	assert.Equal(t, "Hospital", nearby[1].Name)
}
