package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/vbox-gps-agent/internal/channels"
	"github.com/benmeehan/vbox-gps-agent/pkg/location"
	"github.com/rs/zerolog"
)

// startStopper is implemented by channels that own background
// resources, currently only the HTTP listener.
type startStopper interface {
	Start() error
	Stop() error
}

// PublisherService drives the publish loop: on every tick it pulls
// one sample from the location provider and pushes it to every
// enabled channel. Channel failures are logged and never abort the
// cycle; only an operator stop ends the loop.
type PublisherService struct {
	// Configuration fields
	interval time.Duration

	// Dependencies
	provider location.Provider
	channels []channels.Channel
	logger   zerolog.Logger

	// Internal state management
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool

	active  []channels.Channel
	started []startStopper
}

// NewPublisherService creates a PublisherService over the given
// provider and channel set.
func NewPublisherService(interval time.Duration, provider location.Provider,
	chans []channels.Channel, logger zerolog.Logger) *PublisherService {
	return &PublisherService{
		interval: interval,
		provider: provider,
		channels: chans,
		logger:   logger,
		running:  false,
	}
}

// Start initializes the enabled channels and launches the publish
// loop. A channel whose startup fails (an unbindable HTTP port, for
// example) is dropped with a warning and the service continues with
// the remaining channels.
func (p *PublisherService) Start() error {
	if p.running {
		p.logger.Warn().Msg("PublisherService is already running")
		return errors.New("publisher service is already running")
	}

	p.active = nil
	p.started = nil
	for _, ch := range p.channels {
		if ss, ok := ch.(startStopper); ok {
			if err := ss.Start(); err != nil {
				p.logger.Warn().
					Err(err).
					Str("channel", ch.Name()).
					Msg("Channel failed to start, continuing without it")
				continue
			}
			p.started = append(p.started, ss)
		}
		p.active = append(p.active, ch)
	}

	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.running = true

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.runPublishLoop()
	}()

	p.logger.Info().
		Dur("interval", p.interval).
		Int("channels", len(p.active)).
		Msg("PublisherService started")
	return nil
}

// Stop cancels the publish loop, stops channels the service owns, and
// closes the provider. No sample is published after Stop returns.
func (p *PublisherService) Stop() error {
	if !p.running {
		p.logger.Warn().Msg("PublisherService is not running")
		return errors.New("publisher service is not running")
	}

	p.cancel()
	p.wg.Wait()

	var stopErrors []error
	for i := len(p.started) - 1; i >= 0; i-- {
		if err := p.started[i].Stop(); err != nil {
			stopErrors = append(stopErrors, err)
		}
	}

	if err := p.provider.Close(); err != nil {
		stopErrors = append(stopErrors, err)
	}

	p.running = false
	p.logger.Info().Msg("PublisherService stopped")
	return errors.Join(stopErrors...)
}

// runPublishLoop publishes immediately, then on every tick until the
// context is cancelled.
func (p *PublisherService) runPublishLoop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.publishCycle()

	for {
		select {
		case <-ticker.C:
			p.publishCycle()
		case <-p.ctx.Done():
			p.logger.Info().Msg("PublisherService is stopping")
			return
		}
	}
}

// publishCycle runs one full cycle: sample, fan out, summarize.
func (p *PublisherService) publishCycle() {
	sample := p.provider.Sample()

	for _, ch := range p.active {
		if err := ch.Publish(sample); err != nil {
			p.logger.Error().
				Err(err).
				Str("channel", ch.Name()).
				Msg("Failed to publish sample to channel")
		}
	}

	p.logger.Info().
		Float64("latitude", sample.Latitude).
		Float64("longitude", sample.Longitude).
		Float64("altitude", sample.Altitude).
		Float64("accuracy", sample.Accuracy).
		Str("source", sample.Source).
		Str("timestamp", sample.Timestamp).
		Msg("GPS update")
}
