package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/vbox-gps-agent/internal/constants"
	"github.com/benmeehan/vbox-gps-agent/pkg/location"
	"github.com/benmeehan/vbox-gps-agent/pkg/vbox"
	"github.com/rs/zerolog"
)

// PropertyReader is the guest-side read contract, satisfied by
// vbox.ControlClient and vbox.MemoryStore.
type PropertyReader interface {
	GetGuestProperty(ctx context.Context, key string) (string, bool, error)
}

// ConsumerClient runs inside the guest, fetching the published sample
// back out of the property store and rendering it. A missing or
// unparseable value is "no data", never a failure; a permanently
// missing VBoxControl binary flips the client into demo mode.
type ConsumerClient struct {
	// Configuration fields
	interval time.Duration
	demoMode bool

	// Dependencies
	reader PropertyReader
	logger zerolog.Logger

	// Internal state management
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewConsumerClient creates a ConsumerClient reading through the
// given property reader.
func NewConsumerClient(interval time.Duration, demoMode bool, reader PropertyReader, logger zerolog.Logger) *ConsumerClient {
	return &ConsumerClient{
		interval: interval,
		demoMode: demoMode,
		reader:   reader,
		logger:   logger,
		running:  false,
	}
}

// FetchLocation reads and decodes the published sample. The second
// return is false when no usable sample is available.
func (c *ConsumerClient) FetchLocation() (location.Sample, bool) {
	if c.demoMode {
		return demoSample(), true
	}

	ctx, cancel := context.WithTimeout(context.Background(), vbox.DefaultCommandTimeout)
	defer cancel()

	value, found, err := c.reader.GetGuestProperty(ctx, constants.PropertyKeyLocation)
	if err != nil {
		if errors.Is(err, vbox.ErrToolNotFound) {
			c.demoMode = true
			c.logger.Warn().
				Err(err).
				Msg("VBoxControl not found, make sure Guest Additions are installed; switching to demo mode")
			return demoSample(), true
		}
		c.logger.Error().Err(err).Msg("Failed to read guest property")
		return location.Sample{}, false
	}
	if !found {
		return location.Sample{}, false
	}

	var sample location.Sample
	if err := json.Unmarshal([]byte(value), &sample); err != nil {
		c.logger.Error().Err(err).Msg("Failed to parse location JSON")
		return location.Sample{}, false
	}

	return sample, true
}

// FetchAndDisplay performs one fetch and renders the outcome. Absence
// of data is reported explicitly, never skipped.
func (c *ConsumerClient) FetchAndDisplay() {
	sample, ok := c.FetchLocation()
	if !ok {
		c.logger.Warn().Msg("No GPS data available")
		return
	}

	event := c.logger.Info().
		Float64("latitude", sample.Latitude).
		Float64("longitude", sample.Longitude).
		Float64("altitude", sample.Altitude).
		Float64("accuracy", sample.Accuracy).
		Str("timestamp", sample.Timestamp).
		Str("source", sample.Source)
	if sample.IsStub() {
		event = event.Str("error", sample.Error)
	}
	event.Msg("GPS location received")
}

// Start launches the polling loop in a separate goroutine.
func (c *ConsumerClient) Start() error {
	if c.running {
		c.logger.Warn().Msg("ConsumerClient is already running")
		return errors.New("consumer client is already running")
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.running = true

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.FetchAndDisplay()

		for {
			select {
			case <-ticker.C:
				c.FetchAndDisplay()
			case <-c.ctx.Done():
				c.logger.Info().Msg("ConsumerClient is stopping")
				return
			}
		}
	}()

	c.logger.Info().Dur("interval", c.interval).Msg("ConsumerClient started")
	return nil
}

// Stop gracefully stops the polling loop.
func (c *ConsumerClient) Stop() error {
	if !c.running {
		c.logger.Warn().Msg("ConsumerClient is not running")
		return errors.New("consumer client is not running")
	}

	c.cancel()
	c.wg.Wait()

	c.running = false
	c.logger.Info().Msg("ConsumerClient stopped")
	return nil
}

// demoSample is the canned reading served when no property store is
// reachable.
func demoSample() location.Sample {
	return location.Sample{
		Latitude:  37.7749,
		Longitude: -122.4194,
		Altitude:  50.0,
		Accuracy:  10.0,
		Timestamp: location.UTCTimestamp(),
		Source:    location.SourceDemo,
	}
}
