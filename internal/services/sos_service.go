package services

import (
	"encoding/json"
	"errors"
	"time"

	mqttLib "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/rakshaapp/raksha-agent/internal/appstate"
	"github.com/rakshaapp/raksha-agent/internal/models"
	"github.com/rakshaapp/raksha-agent/internal/profile"
	"github.com/rakshaapp/raksha-agent/internal/stats"
	"github.com/rakshaapp/raksha-agent/internal/store"
	"github.com/rakshaapp/raksha-agent/pkg/mqtt"
)

// Locator performs a single gated location query.
type Locator interface {
	CurrentSample() (models.LocationSample, error)
}

// SOSResult reports the outcome of an SOS submission. The persisted event is
// the durable source of truth; notification is best effort, so a delivery
// failure after a successful persist is a partial success, never a rollback.
type SOSResult struct {
	Event       models.SOSEvent
	Delivered   bool
	DeliveryErr error
}

// triggerRequest is the payload accepted on the external trigger topic.
type triggerRequest struct {
	Message string `json:"message,omitempty"`
}

// alertPayload is what gets published on the alert topic: the event plus
// the help centers within reach of it, nearest first.
type alertPayload struct {
	Event       models.SOSEvent     `json:"event"`
	HelpCenters []models.HelpCenter `json:"help_centers,omitempty"`
}

// SOSService orchestrates SOS submission: sample location, persist the
// event, fan out notifications, and publish the alert to the broker.
type SOSService struct {
	// Configuration fields
	triggerTopic string
	alertTopic   string
	qos          int
	helplines    []string
	helpCenters  []models.HelpCenter
	helpRadiusKm float64

	// Dependencies
	locator    Locator
	eventStore store.EventStore
	dispatcher *Dispatcher
	userStore  profile.UserStoreInterface
	mqttClient mqtt.MQTTClient
	state      *appstate.Store
	logger     zerolog.Logger

	running bool
}

// NewSOSService creates a new SOSService instance.
func NewSOSService(triggerTopic, alertTopic string, qos int, helplines []string,
	helpCenters []models.HelpCenter, helpRadiusKm float64, locator Locator,
	eventStore store.EventStore, dispatcher *Dispatcher, userStore profile.UserStoreInterface,
	mqttClient mqtt.MQTTClient, state *appstate.Store, logger zerolog.Logger) *SOSService {
	return &SOSService{
		triggerTopic: triggerTopic,
		alertTopic:   alertTopic,
		qos:          qos,
		helplines:    helplines,
		helpCenters:  helpCenters,
		helpRadiusKm: helpRadiusKm,
		locator:      locator,
		eventStore:   eventStore,
		dispatcher:   dispatcher,
		userStore:    userStore,
		mqttClient:   mqttClient,
		state:        state,
		logger:       logger,
	}
}

// Start subscribes to the external trigger topic so paired devices (panic
// button, wearable) can raise an SOS.
func (s *SOSService) Start() error {
	if s.running {
		s.logger.Warn().Msg("SOSService is already running")
		return errors.New("sos service is already running")
	}

	if s.triggerTopic != "" && s.mqttClient != nil {
		token := s.mqttClient.Subscribe(s.triggerTopic, byte(s.qos), s.handleTrigger)
		if token.Wait() && token.Error() != nil {
			return token.Error()
		}
	}

	s.running = true
	s.logger.Info().
		Str("trigger_topic", s.triggerTopic).
		Str("alert_topic", s.alertTopic).
		Msg("SOSService started")
	return nil
}

// Stop unsubscribes from the trigger topic.
func (s *SOSService) Stop() error {
	if !s.running {
		s.logger.Warn().Msg("SOSService is not running")
		return errors.New("sos service is not running")
	}

	if s.triggerTopic != "" && s.mqttClient != nil {
		token := s.mqttClient.Unsubscribe(s.triggerTopic)
		if token.Wait() && token.Error() != nil {
			s.logger.Error().Err(token.Error()).Msg("Failed to unsubscribe from trigger topic")
			return token.Error()
		}
	}

	s.running = false
	s.logger.Info().Msg("SOSService stopped")
	return nil
}

// Trigger submits an SOS for the profile user. An empty message is replaced
// by the standard alert text. The store write must succeed; everything after
// it is reported through the result, not rolled back.
func (s *SOSService) Trigger(message string) (SOSResult, error) {
	user := s.userStore.GetUser()

	sample, err := s.locator.CurrentSample()
	if err != nil {
		s.dispatchError(err)
		return SOSResult{}, err
	}

	now := time.Now()
	if message == "" {
		message = models.ComposeSOSMessage(user.Name, sample, now)
	} else if err := models.ValidateSOSMessage(message); err != nil {
		return SOSResult{}, err
	}

	event, err := s.eventStore.Create(store.NewEvent{
		UserID:    user.ID,
		Location:  sample,
		Message:   message,
		CreatedAt: now,
	})
	if err != nil {
		s.dispatchError(err)
		return SOSResult{}, err
	}

	if s.state != nil {
		s.state.Dispatch(appstate.EventLogged{Event: event})
	}

	result := SOSResult{Event: event}
	recipients := append(user.ContactPhones(), s.helplines...)
	if err := s.dispatcher.Broadcast(recipients, message); err != nil {
		// Partial success: the event is persisted, delivery is re-attempted
		// by the user pressing SOS again (which creates a new event).
		result.DeliveryErr = err
		s.logger.Error().Err(err).Str("event_id", event.ID).Msg("SOS notification dispatch failed")
	} else {
		result.Delivered = true
	}

	s.publishAlert(event)
	return result, nil
}

// Resolve marks an event resolved.
func (s *SOSService) Resolve(id string) error {
	return s.eventStore.UpdateStatus(id, models.StatusResolved)
}

// MarkFalseAlarm marks an event as a false alarm.
func (s *SOSService) MarkFalseAlarm(id string) error {
	return s.eventStore.UpdateStatus(id, models.StatusFalseAlarm)
}

// handleTrigger processes an external SOS trigger message.
func (s *SOSService) handleTrigger(_ mqttLib.Client, msg mqttLib.Message) {
	var req triggerRequest
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		s.logger.Error().Err(err).Msg("Malformed SOS trigger payload")
		return
	}

	if _, err := s.Trigger(req.Message); err != nil {
		s.logger.Error().Err(err).Msg("External SOS trigger failed")
	}
}

// publishAlert pushes the event to the alert topic for the admin feed. Best
// effort only.
func (s *SOSService) publishAlert(event models.SOSEvent) {
	if s.alertTopic == "" || s.mqttClient == nil {
		return
	}

	payload, err := json.Marshal(alertPayload{
		Event:       event,
		HelpCenters: stats.NearbyHelpCenters(s.helpCenters, event.Location, s.helpRadiusKm),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to serialize SOS alert")
		return
	}

	token := s.mqttClient.Publish(s.alertTopic, byte(s.qos), false, payload)
	if token.Wait() && token.Error() != nil {
		s.logger.Error().
			Err(token.Error()).
			Str("topic", s.alertTopic).
			Msg("Failed to publish SOS alert")
	}
}

func (s *SOSService) dispatchError(err error) {
	if s.state != nil {
		s.state.Dispatch(appstate.ErrorOccurred{Message: err.Error()})
	}
}
