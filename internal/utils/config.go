package utils

import (
	"github.com/rakshaapp/raksha-agent/internal/models"
	"github.com/rakshaapp/raksha-agent/pkg/file"
)

// Config represents the structure of the configuration file.
type Config struct {
	Logging struct {
		Level string `yaml:"level"` // zerolog level name
	} `yaml:"logging"`

	MQTT struct {
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID
		CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate (optional)
	} `yaml:"mqtt"`

	Identity struct {
		ProfileFile string `yaml:"profile_file"` // Path to the user profile file
	} `yaml:"identity"`

	Store struct {
		SnapshotFile      string `yaml:"snapshot_file"`      // Path to the SOS event snapshot (empty disables persistence)
		StrictTransitions bool   `yaml:"strict_transitions"` // Reject re-opening terminal events
	} `yaml:"store"`

	SMS struct {
		GatewayTopic    string `yaml:"gateway_topic"`    // MQTT topic of the SMS gateway
		QOS             int    `yaml:"qos"`              // MQTT QoS level for send requests
		DedupRecipients bool   `yaml:"dedup_recipients"` // Drop duplicate recipients before fan-out
		Workers         int    `yaml:"workers"`          // Fan-out worker count
	} `yaml:"sms"`

	Helplines []string `yaml:"helplines"` // Fixed helpline numbers always notified

	HelpCenters struct {
		RadiusKm float64             `yaml:"radius_km"` // Nearby filter radius
		Centers  []models.HelpCenter `yaml:"centers"`
	} `yaml:"help_centers"`

	Services struct {
		Tracking struct {
			Enabled           bool    `yaml:"enabled"`         // Enable/disable live tracking service
			Interval          int     `yaml:"interval"`        // Interval between location samples (in seconds)
			ShareTopic        string  `yaml:"share_topic"`     // MQTT topic for live location share
			QOS               int     `yaml:"qos"`             // MQTT QoS level for share messages
			Provider          string  `yaml:"provider"`        // "sensor", "google", or "static"
			MapsAPIKey        string  `yaml:"maps_api_key"`    // Google maps API key
			ModemIndex        int     `yaml:"modem_index"`     // Modem index for cell tower survey
			GPSDevicePort     string  `yaml:"gps_device_port"` // Serial port of the GPS sensor
			GPSDeviceBaudRate int     `yaml:"gps_baud_rate"`   // Baud rate for the GPS sensor
			StaticLatitude    float64 `yaml:"static_latitude"`
			StaticLongitude   float64 `yaml:"static_longitude"`
		} `yaml:"tracking"`

		SOS struct {
			Enabled      bool   `yaml:"enabled"`       // Enable/disable SOS service
			TriggerTopic string `yaml:"trigger_topic"` // MQTT topic carrying external SOS triggers
			AlertTopic   string `yaml:"alert_topic"`   // MQTT topic for SOS alert fan-in
			QOS          int    `yaml:"qos"`           // MQTT QoS level for alerts
		} `yaml:"sos"`

		Stats struct {
			Enabled    bool   `yaml:"enabled"`     // Enable/disable admin stats service
			Interval   int    `yaml:"interval"`    // Interval between snapshots (in seconds)
			Topic      string `yaml:"topic"`       // MQTT topic for admin snapshots
			QOS        int    `yaml:"qos"`         // MQTT QoS level for snapshots
			EventLimit int    `yaml:"event_limit"` // Max events pulled per snapshot
		} `yaml:"stats"`
	} `yaml:"services"`
}

// LoadConfig loads the YAML configuration from the specified file and applies
// defaults for omitted fields.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	err := fileClient.ReadYamlFile(filename, &config)
	if err != nil {
		return nil, err
	}

	if config.Services.Tracking.Interval <= 0 {
		config.Services.Tracking.Interval = 30
	}
	if config.Services.Stats.Interval <= 0 {
		config.Services.Stats.Interval = 60
	}
	if config.Services.Stats.EventLimit <= 0 {
		config.Services.Stats.EventLimit = 1000
	}
	if len(config.Helplines) == 0 {
		config.Helplines = []string{"112"}
	}
	if config.SMS.Workers <= 0 {
		config.SMS.Workers = 4
	}
	if config.HelpCenters.RadiusKm <= 0 {
		config.HelpCenters.RadiusKm = 5
	}

	return &config, nil
}
