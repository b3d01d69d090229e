package store

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"

	"github.com/rakshaapp/raksha-agent/internal/models"
	"github.com/rakshaapp/raksha-agent/pkg/file"
)

// NewEvent carries the caller-supplied fields of an SOS event. The store
// assigns the id and forces the initial status.
type NewEvent struct {
	UserID    string
	Location  models.LocationSample
	Message   string
	CreatedAt time.Time
}

// EventStore defines operations on the append-only SOS event log.
type EventStore interface {
	Create(e NewEvent) (models.SOSEvent, error)
	List(limit int) ([]models.SOSEvent, error)
	UpdateStatus(id string, status models.Status) error
}

// LogStore is an append-only, in-memory SOS event log with an optional JSON
// snapshot on disk. Events are never deleted; status updates are the only
// mutation.
type LogStore struct {
	mu     sync.RWMutex
	events []models.SOSEvent
	index  cmap.ConcurrentMap[string, int] // event id -> slot in events

	policy       TransitionPolicy
	snapshotPath string
	fileOps      file.FileOperations
	logger       zerolog.Logger
}

// NewLogStore creates a LogStore. snapshotPath may be empty to disable
// persistence; when set, an existing snapshot is loaded eagerly.
func NewLogStore(policy TransitionPolicy, snapshotPath string, fileOps file.FileOperations, logger zerolog.Logger) (*LogStore, error) {
	s := &LogStore{
		index:        cmap.New[int](),
		policy:       policy,
		snapshotPath: snapshotPath,
		fileOps:      fileOps,
		logger:       logger,
	}

	if snapshotPath != "" && fileOps != nil {
		var events []models.SOSEvent
		err := fileOps.ReadJsonFile(snapshotPath, &events)
		switch {
		case err == nil:
			s.events = events
			for i, e := range events {
				s.index.Set(e.ID, i)
			}
			logger.Info().Int("events", len(events)).Str("path", snapshotPath).Msg("Loaded SOS event snapshot")
		case os.IsNotExist(err):
			// First run, nothing persisted yet.
		default:
			return nil, fmt.Errorf("failed to load event snapshot: %w", err)
		}
	}

	return s, nil
}

// Create validates and appends a new event. The id is assigned by the store
// and the status is always active.
func (s *LogStore) Create(e NewEvent) (models.SOSEvent, error) {
	if err := e.Location.Validate(); err != nil {
		return models.SOSEvent{}, err
	}
	if err := models.ValidateSOSMessage(e.Message); err != nil {
		return models.SOSEvent{}, err
	}

	event := models.SOSEvent{
		ID:        uuid.New().String(),
		UserID:    e.UserID,
		Location:  e.Location,
		Message:   e.Message,
		CreatedAt: e.CreatedAt,
		Status:    models.StatusActive,
	}

	s.mu.Lock()
	s.events = append(s.events, event)
	s.index.Set(event.ID, len(s.events)-1)
	s.persistLocked()
	s.mu.Unlock()

	return event, nil
}

// List returns at most limit events ordered by creation time, most recent
// first. limit <= 0 means no limit. An empty store yields an empty slice.
func (s *LogStore) List(limit int) ([]models.SOSEvent, error) {
	s.mu.RLock()
	out := make([]models.SOSEvent, len(s.events))
	copy(out, s.events)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateStatus applies a status change to an existing event, subject to the
// configured transition policy.
func (s *LogStore) UpdateStatus(id string, status models.Status) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.index.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if err := s.policy(s.events[slot].Status, status); err != nil {
		return err
	}

	s.events[slot].Status = status
	s.persistLocked()
	return nil
}

// persistLocked writes the snapshot if persistence is configured. Snapshot
// failures are logged, not surfaced: the in-memory log remains the source of
// truth for the running session.
func (s *LogStore) persistLocked() {
	if s.snapshotPath == "" || s.fileOps == nil {
		return
	}
	if err := s.fileOps.WriteJsonFile(s.snapshotPath, s.events); err != nil {
		s.logger.Error().Err(err).Str("path", s.snapshotPath).Msg("Failed to persist SOS event snapshot")
	}
}
