package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rakshaapp/raksha-agent/internal/models"
	"github.com/rakshaapp/raksha-agent/internal/stats"
	"github.com/rakshaapp/raksha-agent/internal/store"
	"github.com/rakshaapp/raksha-agent/pkg/mqtt"
)

// StatsService periodically derives the admin summary and hotspot grouping
// from the event log and publishes the snapshot to the broker.
type StatsService struct {
	// Configuration fields
	topic      string
	interval   time.Duration
	qos        int
	eventLimit int

	// Dependencies
	eventStore store.EventStore
	mqttClient mqtt.MQTTClient
	logger     zerolog.Logger

	// Internal state management
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewStatsService initializes and returns a new instance of StatsService.
func NewStatsService(topic string, interval time.Duration, qos, eventLimit int,
	eventStore store.EventStore, mqttClient mqtt.MQTTClient, logger zerolog.Logger) *StatsService {
	return &StatsService{
		topic:      topic,
		interval:   interval,
		qos:        qos,
		eventLimit: eventLimit,
		eventStore: eventStore,
		mqttClient: mqttClient,
		logger:     logger,
	}
}

// Start begins periodic snapshot publication.
func (s *StatsService) Start() error {
	if s.running {
		s.logger.Warn().Msg("StatsService is already running")
		return errors.New("stats service is already running")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.running = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.publishSnapshot(); err != nil {
					s.logger.Error().Err(err).Msg("Failed to publish stats snapshot")
				}
			case <-s.ctx.Done():
				s.logger.Info().Msg("StatsService is stopping")
				return
			}
		}
	}()

	s.logger.Info().
		Str("topic", s.topic).
		Dur("interval", s.interval).
		Msg("StatsService started")
	return nil
}

// Stop terminates snapshot publication.
func (s *StatsService) Stop() error {
	if !s.running {
		s.logger.Warn().Msg("StatsService is not running")
		return errors.New("stats service is not running")
	}

	s.cancel()
	s.wg.Wait()
	s.running = false
	s.logger.Info().Msg("StatsService stopped")
	return nil
}

// Snapshot derives the current summary and hotspot grouping from the event
// log. Recomputed from scratch on every call.
func (s *StatsService) Snapshot() (models.StatsSnapshot, error) {
	events, err := s.eventStore.List(s.eventLimit)
	if err != nil {
		return models.StatsSnapshot{}, err
	}

	now := time.Now()
	return models.StatsSnapshot{
		Timestamp: now,
		Summary:   stats.Summarize(events, now),
		Hotspots:  stats.GroupByLocation(events),
	}, nil
}

// publishSnapshot computes and publishes one snapshot.
func (s *StatsService) publishSnapshot() error {
	snapshot, err := s.Snapshot()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	token := s.mqttClient.Publish(s.topic, byte(s.qos), false, payload)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}

	s.logger.Info().
		Int("total_events", snapshot.Summary.Total).
		Int("hotspots", len(snapshot.Hotspots)).
		Str("topic", s.topic).
		Msg("Stats snapshot published")
	return nil
}
