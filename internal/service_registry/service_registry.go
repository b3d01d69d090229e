package service_registry

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rakshaapp/raksha-agent/internal/appstate"
	"github.com/rakshaapp/raksha-agent/internal/profile"
	"github.com/rakshaapp/raksha-agent/internal/services"
	"github.com/rakshaapp/raksha-agent/internal/store"
	"github.com/rakshaapp/raksha-agent/internal/utils"
	"github.com/rakshaapp/raksha-agent/pkg/geolocation"
	"github.com/rakshaapp/raksha-agent/pkg/mqtt"
)

// Service is the interface for all plug-in services.
type Service interface {
	Start() error
	Stop() error
}

// ServiceRegistry manages the lifecycle of the agent's services.
type ServiceRegistry struct {
	services    map[string]Service // Stores registered services
	serviceKeys []string           // Maintains order of service registration
	mqttClient  mqtt.MQTTClient
	userStore   profile.UserStoreInterface
	eventStore  store.EventStore
	dispatcher  *services.Dispatcher
	state       *appstate.Store
	Logger      zerolog.Logger
}

// NewServiceRegistry initializes a new service registry with dependencies.
func NewServiceRegistry(mqttClient mqtt.MQTTClient, userStore profile.UserStoreInterface, eventStore store.EventStore,
	dispatcher *services.Dispatcher, state *appstate.Store, logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services:   make(map[string]Service),
		mqttClient: mqttClient,
		userStore:  userStore,
		eventStore: eventStore,
		dispatcher: dispatcher,
		state:      state,
		Logger:     logger,
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc Service) {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	startedServices := []string{}

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = sr.services[startedServices[i]].Stop()
			}
			return err
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.serviceKeys) - 1; i >= 0; i-- {
		name := sr.serviceKeys[i]
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}

// RegisterServices initializes and registers enabled services based on
// configuration.
func (sr *ServiceRegistry) RegisterServices(config *utils.Config) error {
	var tracker *services.TrackingService

	// Ordered service definitions with inline constructors
	servicesInOrder := []struct {
		name        string
		enabled     bool
		constructor func() (Service, error)
	}{
		{
			name:    "tracking",
			enabled: config.Services.Tracking.Enabled,
			constructor: func() (Service, error) {
				provider, err := buildProvider(config)
				if err != nil {
					return nil, err
				}
				tracker = services.NewTrackingService(
					config.Services.Tracking.ShareTopic,
					time.Duration(config.Services.Tracking.Interval)*time.Second,
					config.Services.Tracking.QOS,
					sr.userStore,
					sr.mqttClient,
					provider,
					sr.state,
					sr.Logger,
				)
				return tracker, nil
			},
		},
		{
			name:    "sos",
			enabled: config.Services.SOS.Enabled,
			constructor: func() (Service, error) {
				if tracker == nil {
					return nil, errors.New("sos service requires the tracking service")
				}
				return services.NewSOSService(
					config.Services.SOS.TriggerTopic,
					config.Services.SOS.AlertTopic,
					config.Services.SOS.QOS,
					config.Helplines,
					config.HelpCenters.Centers,
					config.HelpCenters.RadiusKm,
					tracker,
					sr.eventStore,
					sr.dispatcher,
					sr.userStore,
					sr.mqttClient,
					sr.state,
					sr.Logger,
				), nil
			},
		},
		{
			name:    "stats",
			enabled: config.Services.Stats.Enabled,
			constructor: func() (Service, error) {
				return services.NewStatsService(
					config.Services.Stats.Topic,
					time.Duration(config.Services.Stats.Interval)*time.Second,
					config.Services.Stats.QOS,
					config.Services.Stats.EventLimit,
					sr.eventStore,
					sr.mqttClient,
					sr.Logger,
				), nil
			},
		},
	}

	for _, svc := range servicesInOrder {
		if !svc.enabled {
			sr.Logger.Info().Msgf("Service %s is disabled", svc.name)
			continue
		}
		instance, err := svc.constructor()
		if err != nil {
			return fmt.Errorf("failed to construct service %s: %w", svc.name, err)
		}
		sr.RegisterService(svc.name, instance)
	}

	return nil
}

// buildProvider selects the location provider from configuration.
func buildProvider(config *utils.Config) (geolocation.Provider, error) {
	tracking := config.Services.Tracking
	switch tracking.Provider {
	case "sensor":
		return geolocation.NewDeviceSensorProvider(tracking.GPSDevicePort, tracking.GPSDeviceBaudRate), nil
	case "google":
		return geolocation.NewGoogleGeolocationProvider(tracking.MapsAPIKey, tracking.ModemIndex)
	case "static", "":
		return geolocation.NewStaticProvider(tracking.StaticLatitude, tracking.StaticLongitude, 25), nil
	}
	return nil, fmt.Errorf("unknown location provider %q", tracking.Provider)
}
