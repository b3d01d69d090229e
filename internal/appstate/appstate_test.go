package appstate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rakshaapp/raksha-agent/internal/appstate"
	"github.com/rakshaapp/raksha-agent/internal/models"
)

func TestDispatch_LocationUpdated(t *testing.T) {
	s := appstate.NewStore()
	assert.Nil(t, s.State().CurrentLocation)

	sample := models.LocationSample{Latitude: 12.9716, Longitude: 77.5946, CapturedAt: time.Now()}
	s.Dispatch(appstate.LocationUpdated{Sample: sample})

	got := s.State().CurrentLocation
	assert.NotNil(t, got)
	assert.Equal(t, sample, *got)
}

func TestDispatch_TrackingChanged(t *testing.T) {
	s := appstate.NewStore()

	s.Dispatch(appstate.TrackingChanged{Active: true})
	assert.True(t, s.State().Tracking)

	s.Dispatch(appstate.TrackingChanged{Active: false})
	assert.False(t, s.State().Tracking)
}

func TestDispatch_EventLoggedPrepends(t *testing.T) {
	s := appstate.NewStore()

	first := models.SOSEvent{ID: "a", Status: models.StatusActive}
	second := models.SOSEvent{ID: "b", Status: models.StatusActive}
	s.Dispatch(appstate.EventLogged{Event: first})
	s.Dispatch(appstate.EventLogged{Event: second})

	state := s.State()
	assert.True(t, state.SOSActive)
	assert.Len(t, state.Events, 2)
	assert.Equal(t, "b", state.Events[0].ID)
	assert.Equal(t, "a", state.Events[1].ID)
}

func TestDispatch_EventsLoadedCopiesInput(t *testing.T) {
	s := appstate.NewStore()

	events := []models.SOSEvent{{ID: "a"}, {ID: "b"}}
	s.Dispatch(appstate.EventsLoaded{Events: events})

	// Mutating the caller's slice must not leak into the state.
	events[0].ID = "mutated"
	assert.Equal(t, "a", s.State().Events[0].ID)
}

func TestDispatch_ErrorLifecycle(t *testing.T) {
	s := appstate.NewStore()

	s.Dispatch(appstate.ErrorOccurred{Message: "gps timed out"})
	assert.Equal(t, "gps timed out", s.State().LastError)

	s.Dispatch(appstate.ErrorCleared{})
	assert.Empty(t, s.State().LastError)
}

func TestSubscribe(t *testing.T) {
	s := appstate.NewStore()

	var seen []appstate.State
	unsubscribe := s.Subscribe(func(state appstate.State) {
		seen = append(seen, state)
	})

	s.Dispatch(appstate.TrackingChanged{Active: true})
	assert.Len(t, seen, 1)
	assert.True(t, seen[0].Tracking)

	unsubscribe()
	s.Dispatch(appstate.TrackingChanged{Active: false})
	assert.Len(t, seen, 1)

	// Unsubscribing twice is harmless.
	unsubscribe()
}
