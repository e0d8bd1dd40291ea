package utils

import (
	"time"

	"github.com/benmeehan/vbox-gps-agent/pkg/file"
)

// Config represents the structure of the configuration file. Flags
// override the values loaded here; secrets may additionally be
// overridden from the environment.
type Config struct {
	VM struct {
		Name string `yaml:"name"` // Name of the VirtualBox VM to publish into
	} `yaml:"vm"`

	Service struct {
		DemoMode bool          `yaml:"demo_mode"` // Replace all real transports and sources with stand-ins
		Interval time.Duration `yaml:"interval"`  // Interval between publish cycles
	} `yaml:"service"`

	Location struct {
		Provider      string  `yaml:"provider"`        // simulated | platform | serial | google
		BaseLatitude  float64 `yaml:"base_latitude"`   // Center of the simulated random walk
		BaseLongitude float64 `yaml:"base_longitude"`  // Center of the simulated random walk
		GPSDevicePort string  `yaml:"gps_device_port"` // Serial port where the GPS sensor is mounted
		GPSBaudRate   int     `yaml:"gps_baud_rate"`   // Baud rate for the GPS sensor
		MapsAPIKey    string  `yaml:"maps_api_key"`    // Google Maps API key (env: MAPS_API_KEY)
	} `yaml:"location"`

	Network struct {
		Enabled bool `yaml:"enabled"` // Serve samples over HTTP to the guest
		Port    int  `yaml:"port"`    // HTTP listener port
	} `yaml:"network"`

	MQTT struct {
		Enabled       bool   `yaml:"enabled"`        // Mirror samples to an MQTT broker
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID, suffixed with a UUID at startup
		Topic         string `yaml:"topic"`          // Topic the sample JSON is published to
		QOS           int    `yaml:"qos"`            // MQTT QoS level
		CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate, empty for plain TCP
	} `yaml:"mqtt"`

	Redis struct {
		Enabled  bool          `yaml:"enabled"`  // Mirror property keys into Redis
		Address  string        `yaml:"address"`  // host:port of the Redis server
		Password string        `yaml:"password"` // Redis password (env: REDIS_PASS)
		DB       int           `yaml:"db"`       // Redis database number
		TTL      time.Duration `yaml:"ttl"`      // Expiry for mirrored keys, 0 keeps them forever
	} `yaml:"redis"`

	Logging struct {
		Level  string `yaml:"level"`  // trace | debug | info | warn | error
		Format string `yaml:"format"` // json | console
	} `yaml:"logging"`
}

// LoadConfig loads the YAML configuration from the specified file.
// It returns a pointer to the Config struct and an error if loading fails.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	err := fileClient.ReadYamlFile(filename, &config)
	if err != nil {
		return nil, err
	}

	return &config, nil
}
