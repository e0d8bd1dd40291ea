package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benmeehan/vbox-gps-agent/internal/constants"
	"github.com/benmeehan/vbox-gps-agent/internal/services"
	"github.com/benmeehan/vbox-gps-agent/internal/utils"
	"github.com/benmeehan/vbox-gps-agent/pkg/file"
	"github.com/benmeehan/vbox-gps-agent/pkg/vbox"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "configs/guest.yaml", "Path to the configuration file")
	demoMode := flag.Bool("demo", false, "Run in demo mode with canned GPS data")
	interval := flag.Int("interval", int(constants.DefaultInterval/time.Second), "Update interval in seconds")
	once := flag.Bool("once", false, "Fetch the location once and exit")
	flag.Parse()

	fileClient := file.NewFileService()

	config, err := utils.LoadConfig(*configPath, fileClient)
	if err != nil {
		config = &utils.Config{}
	}
	if config.Service.Interval <= 0 {
		config.Service.Interval = constants.DefaultInterval
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["demo"] {
		config.Service.DemoMode = *demoMode
	}
	if set["interval"] {
		config.Service.Interval = time.Duration(*interval) * time.Second
	}

	logger := utils.NewLogger(config.Logging.Level, config.Logging.Format)
	if err != nil {
		logger.Warn().Str("path", *configPath).Msg("No configuration file loaded, using defaults and flags")
	}

	control := vbox.NewControlClient(vbox.NewExecRunner())
	client := services.NewConsumerClient(config.Service.Interval, config.Service.DemoMode, control, logger)

	if *once {
		client.FetchAndDisplay()
		return
	}

	if err := client.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start consumer client")
	}

	logger.Info().
		Bool("demo", config.Service.DemoMode).
		Msg("VirtualBox GPS guest client running, press Ctrl+C to stop")

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	logger.Info().Msg("Shutting down gracefully...")
	if err := client.Stop(); err != nil {
		logger.Error().Err(err).Msg("Consumer client stop reported errors")
	}
}
