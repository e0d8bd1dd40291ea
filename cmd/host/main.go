package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benmeehan/vbox-gps-agent/internal/channels"
	"github.com/benmeehan/vbox-gps-agent/internal/constants"
	"github.com/benmeehan/vbox-gps-agent/internal/services"
	"github.com/benmeehan/vbox-gps-agent/internal/utils"
	"github.com/benmeehan/vbox-gps-agent/pkg/file"
	"github.com/benmeehan/vbox-gps-agent/pkg/location"
	"github.com/benmeehan/vbox-gps-agent/pkg/mqtt"
	"github.com/benmeehan/vbox-gps-agent/pkg/vbox"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	// Secrets may come from a local .env file
	_ = godotenv.Load()

	configPath := flag.String("config", "configs/host.yaml", "Path to the configuration file")
	vmName := flag.String("vm", constants.DefaultVMName, "Name of the VirtualBox VM")
	demoMode := flag.Bool("demo", false, "Run in demo mode with simulated GPS data and no real transports")
	interval := flag.Int("interval", int(constants.DefaultInterval/time.Second), "Update interval in seconds")
	port := flag.Int("port", constants.DefaultHTTPPort, "HTTP listener port for guests polling over the network")
	noNetwork := flag.Bool("no-network", false, "Disable the HTTP channel")
	providerName := flag.String("provider", "", "Location provider: simulated, platform, serial or google")
	flag.Parse()

	fileClient := file.NewFileService()

	config, err := utils.LoadConfig(*configPath, fileClient)
	if err != nil {
		config = &utils.Config{}
		config.Network.Enabled = true
	}

	applyDefaults(config)
	applyFlags(config, vmName, demoMode, interval, port, noNetwork, providerName)
	applyEnv(config)

	logger := utils.NewLogger(config.Logging.Level, config.Logging.Format)
	logger = logger.With().Str("run_id", uuid.New().String()).Logger()
	if err != nil {
		logger.Warn().Str("path", *configPath).Msg("No configuration file loaded, using defaults and flags")
	}

	provider := buildProvider(config, logger)

	runner := vbox.NewExecRunner()
	manage := vbox.NewManageClient(runner)

	// No management-SDK binding ships with the agent; the session
	// transport is available only when one is injected (the demo
	// binary wires the in-memory store here).
	capability := vbox.Capability{SessionAvailable: false}

	if !config.Service.DemoMode {
		checkToolVersion(manage, logger)
	}

	chans := []channels.Channel{
		channels.NewPropertyChannel(config.VM.Name, nil, capability, manage, config.Service.DemoMode, logger),
	}

	if config.Network.Enabled {
		chans = append(chans, channels.NewHTTPChannel(config.Network.Port, provider, logger))
	} else {
		logger.Info().Msg("Network mode disabled, property-store publishing only")
	}

	var mqttClient *mqtt.MqttService
	if config.MQTT.Enabled {
		clientID := config.MQTT.ClientID + "-" + uuid.New().String()
		mqttClient = mqtt.NewMqttService(fileClient)
		if err := mqttClient.Initialize(config.MQTT.Broker, clientID, config.MQTT.CACertificate); err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize MQTT connection, continuing without the MQTT channel")
			mqttClient = nil
		} else {
			logger.Info().Str("client_id", clientID).Msg("MQTT connection established")
			chans = append(chans, channels.NewMQTTChannel(config.MQTT.Topic, config.MQTT.QOS, mqttClient, logger))
		}
	}

	if config.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     config.Redis.Address,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})
		chans = append(chans, channels.NewRedisChannel(redisClient, config.Redis.TTL, logger))
	}

	publisher := services.NewPublisherService(config.Service.Interval, provider, chans, logger)
	if err := publisher.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start publisher service")
	}

	logger.Info().
		Str("vm", config.VM.Name).
		Bool("demo", config.Service.DemoMode).
		Msg("VirtualBox GPS host service running, press Ctrl+C to stop")

	// Handle graceful shutdown
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	if err := publisher.Stop(); err != nil {
		logger.Error().Err(err).Msg("Publisher service stop reported errors")
	}
	if mqttClient != nil {
		mqttClient.Disconnect(250)
	}
}

// applyDefaults fills config fields the file left unset.
func applyDefaults(config *utils.Config) {
	if config.VM.Name == "" {
		config.VM.Name = constants.DefaultVMName
	}
	if config.Service.Interval <= 0 {
		config.Service.Interval = constants.DefaultInterval
	}
	if config.Network.Port == 0 {
		config.Network.Port = constants.DefaultHTTPPort
	}
	if config.Location.Provider == "" {
		config.Location.Provider = "platform"
	}
	if config.Location.BaseLatitude == 0 && config.Location.BaseLongitude == 0 {
		config.Location.BaseLatitude = location.DefaultBaseLatitude
		config.Location.BaseLongitude = location.DefaultBaseLongitude
	}
}

// applyFlags lets explicitly passed flags override the file.
func applyFlags(config *utils.Config, vmName *string, demoMode *bool, interval, port *int, noNetwork *bool, providerName *string) {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["vm"] {
		config.VM.Name = *vmName
	}
	if set["demo"] {
		config.Service.DemoMode = *demoMode
	}
	if set["interval"] {
		config.Service.Interval = time.Duration(*interval) * time.Second
	}
	if set["port"] {
		config.Network.Port = *port
	}
	if set["no-network"] && *noNetwork {
		config.Network.Enabled = false
	}
	if set["provider"] {
		config.Location.Provider = *providerName
	}
}

// applyEnv overrides secrets from the environment.
func applyEnv(config *utils.Config) {
	if v := os.Getenv("MAPS_API_KEY"); v != "" {
		config.Location.MapsAPIKey = v
	}
	if v := os.Getenv("REDIS_PASS"); v != "" {
		config.Redis.Password = v
	}
}

// buildProvider selects the location provider. Demo mode always means
// the simulated walk; construction failures fall back to it too so
// the service still comes up.
func buildProvider(config *utils.Config, logger zerolog.Logger) location.Provider {
	baseLat := config.Location.BaseLatitude
	baseLon := config.Location.BaseLongitude

	if config.Service.DemoMode {
		return location.NewSimulatedProvider(baseLat, baseLon)
	}

	switch config.Location.Provider {
	case "simulated":
		return location.NewSimulatedProvider(baseLat, baseLon)
	case "serial":
		return location.NewSerialNMEAProvider(config.Location.GPSDevicePort, config.Location.GPSBaudRate, baseLat, baseLon, logger)
	case "google":
		provider, err := location.NewGoogleGeolocationProvider(config.Location.MapsAPIKey, baseLat, baseLon, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to create Google geolocation provider, falling back to simulated data")
			return location.NewSimulatedProvider(baseLat, baseLon)
		}
		return provider
	case "platform":
		return location.NewPlatformProvider(baseLat, baseLon, logger)
	default:
		logger.Warn().Str("provider", config.Location.Provider).Msg("Unknown provider, falling back to platform dispatch")
		return location.NewPlatformProvider(baseLat, baseLon, logger)
	}
}

// checkToolVersion warns when the installed VirtualBox predates the
// oldest release the property namespace was verified against.
func checkToolVersion(manage *vbox.ManageClient, logger zerolog.Logger) {
	version, err := manage.Version(context.Background())
	if err != nil {
		logger.Debug().Err(err).Msg("Could not determine VBoxManage version")
		return
	}
	if !vbox.CheckVersion(version) {
		logger.Warn().
			Str("installed", version.String()).
			Str("minimum", vbox.MinSupportedVersion).
			Msg("VirtualBox is older than the minimum supported release, guest property publishing may misbehave")
	}
}
