package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rakshaapp/raksha-agent/internal/appstate"
	"github.com/rakshaapp/raksha-agent/internal/profile"
	"github.com/rakshaapp/raksha-agent/internal/service_registry"
	"github.com/rakshaapp/raksha-agent/internal/services"
	"github.com/rakshaapp/raksha-agent/internal/store"
	"github.com/rakshaapp/raksha-agent/internal/utils"
	"github.com/rakshaapp/raksha-agent/pkg/file"
	"github.com/rakshaapp/raksha-agent/pkg/mqtt"
	"github.com/rakshaapp/raksha-agent/pkg/sms"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	// Initialize file operations handler
	fileClient := file.NewFileService()

	// Load configuration from file
	config, err := utils.LoadConfig("configs/config.yaml", fileClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if level, err := zerolog.ParseLevel(config.Logging.Level); err == nil && config.Logging.Level != "" {
		zerolog.SetGlobalLevel(level)
	}

	// Generate a unique MQTT Client ID by appending a UUID
	config.MQTT.ClientID = config.MQTT.ClientID + "-" + uuid.New().String()
	logger.Info().Str("client_id", config.MQTT.ClientID).Msg("Using MQTT client ID")

	// Initialize the shared MQTT connection
	mqttClient := mqtt.NewMqttService(fileClient)
	if err := mqttClient.Initialize(config.MQTT.Broker, config.MQTT.ClientID, config.MQTT.CACertificate); err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize MQTT connection")
	}

	// Load the user profile and its emergency contacts
	userStore := profile.NewUserStore(config.Identity.ProfileFile, fileClient)
	if err := userStore.LoadUser(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to load user profile")
	}

	// Open the SOS event log
	policy := store.AllowAllTransitions
	if config.Store.StrictTransitions {
		policy = store.StrictTransitions
	}
	eventStore, err := store.NewLogStore(policy, config.Store.SnapshotFile, fileClient, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open SOS event log")
	}

	// Notification fan-out over the SMS gateway
	workerPool := utils.NewWorkerPool(config.SMS.Workers)
	messenger := sms.NewBridgeMessenger(config.SMS.GatewayTopic, config.SMS.QOS, mqttClient, logger)
	dispatcher := services.NewDispatcher(messenger, workerPool, config.SMS.DedupRecipients, logger)

	// Shared application state
	state := appstate.NewStore()

	// Create a new service registry and register services from configuration
	serviceRegistry := service_registry.NewServiceRegistry(mqttClient, userStore, eventStore, dispatcher, state, logger)
	if err := serviceRegistry.RegisterServices(config); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register services")
	}

	// Start all registered services in the registry
	if err := serviceRegistry.StartServices(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start services")
	}
	logger.Info().Msg("All services started successfully")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	if err := serviceRegistry.StopServices(); err != nil {
		logger.Error().Err(err).Msg("Failed to stop services cleanly")
	}
	workerPool.Shutdown()
	mqttClient.Disconnect(250)
}
