// Package appstate holds the application's shared view state in an explicit
// container. Updates flow through pure reducer functions applied by
// Dispatch, and interested components observe changes via Subscribe. The
// container is the single serialization point for cross-component state.
package appstate

import (
	"sync"

	"github.com/rakshaapp/raksha-agent/internal/models"
)

// State is an immutable snapshot of the shared application state.
type State struct {
	CurrentLocation *models.LocationSample
	Tracking        bool
	Events          []models.SOSEvent
	SOSActive       bool
	LastError       string
}

// Action describes a state change request.
type Action interface{ isAction() }

// LocationUpdated records a new location sample.
type LocationUpdated struct{ Sample models.LocationSample }

// TrackingChanged toggles the tracking flag.
type TrackingChanged struct{ Active bool }

// EventsLoaded replaces the cached event list.
type EventsLoaded struct{ Events []models.SOSEvent }

// EventLogged prepends a freshly created event.
type EventLogged struct{ Event models.SOSEvent }

// ErrorOccurred records the latest user-visible failure.
type ErrorOccurred struct{ Message string }

// ErrorCleared resets the failure message.
type ErrorCleared struct{}

func (LocationUpdated) isAction() {}
func (TrackingChanged) isAction() {}
func (EventsLoaded) isAction()    {}
func (EventLogged) isAction()     {}
func (ErrorOccurred) isAction()   {}
func (ErrorCleared) isAction()    {}

// reduce returns the next state for an action. It never mutates prev or any
// slice reachable from it.
func reduce(prev State, action Action) State {
	next := prev
	switch a := action.(type) {
	case LocationUpdated:
		sample := a.Sample
		next.CurrentLocation = &sample
	case TrackingChanged:
		next.Tracking = a.Active
	case EventsLoaded:
		next.Events = append([]models.SOSEvent(nil), a.Events...)
	case EventLogged:
		next.Events = append([]models.SOSEvent{a.Event}, prev.Events...)
		next.SOSActive = true
	case ErrorOccurred:
		next.LastError = a.Message
	case ErrorCleared:
		next.LastError = ""
	}
	return next
}

// Store applies actions to the state and notifies subscribers.
type Store struct {
	mu     sync.Mutex
	state  State
	subs   map[int]func(State)
	nextID int
}

// NewStore creates an empty state container.
func NewStore() *Store {
	return &Store{subs: make(map[int]func(State))}
}

// Dispatch applies an action and synchronously notifies subscribers with the
// resulting snapshot.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	s.state = reduce(s.state, action)
	snapshot := s.state
	listeners := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a change listener and returns its unsubscribe
// function. Unsubscribing is idempotent.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
