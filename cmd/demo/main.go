package main

import (
	"flag"
	"time"

	"github.com/benmeehan/vbox-gps-agent/internal/channels"
	"github.com/benmeehan/vbox-gps-agent/internal/constants"
	"github.com/benmeehan/vbox-gps-agent/internal/services"
	"github.com/benmeehan/vbox-gps-agent/internal/utils"
	"github.com/benmeehan/vbox-gps-agent/pkg/location"
	"github.com/benmeehan/vbox-gps-agent/pkg/vbox"
)

// The demo binary runs the host and guest sides against an in-memory
// property store, exercising the full publish/fetch path without
// VirtualBox installed.
func main() {
	interval := flag.Int("interval", 2, "Publish interval in seconds")
	duration := flag.Int("duration", 10, "How long to run, in seconds")
	port := flag.Int("port", constants.DefaultHTTPPort, "HTTP listener port, 0 disables the HTTP channel")
	flag.Parse()

	logger := utils.NewLogger("info", "console")
	logger.Info().Msg("VirtualBox GPS demo: host and guest sharing an in-memory property store")

	store := vbox.NewMemoryStore()
	provider := location.NewSimulatedProvider(location.DefaultBaseLatitude, location.DefaultBaseLongitude)

	// The memory store acts as the session transport, so the CLI
	// fallback is never reached.
	capability := vbox.Capability{SessionAvailable: true}
	hostLogger := logger.With().Str("side", "host").Logger()
	chans := []channels.Channel{
		channels.NewPropertyChannel(constants.DefaultVMName, store, capability, vbox.NewManageClient(vbox.NewExecRunner()), false, hostLogger),
	}
	if *port > 0 {
		chans = append(chans, channels.NewHTTPChannel(*port, provider, hostLogger))
	}

	publisher := services.NewPublisherService(time.Duration(*interval)*time.Second, provider, chans, hostLogger)

	guestLogger := logger.With().Str("side", "guest").Logger()
	consumer := services.NewConsumerClient(time.Duration(*interval)*time.Second, false, store, guestLogger)

	if err := publisher.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start publisher service")
	}
	// Give the first publish a head start so the guest has data.
	time.Sleep(500 * time.Millisecond)
	if err := consumer.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start consumer client")
	}

	time.Sleep(time.Duration(*duration) * time.Second)

	logger.Info().Msg("Demo complete, shutting down")
	if err := consumer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Consumer client stop reported errors")
	}
	if err := publisher.Stop(); err != nil {
		logger.Error().Err(err).Msg("Publisher service stop reported errors")
	}
}
