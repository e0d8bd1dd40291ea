package channels

import (
	"context"
	"errors"

	"github.com/benmeehan/vbox-gps-agent/pkg/location"
	"github.com/benmeehan/vbox-gps-agent/pkg/vbox"
	"github.com/rs/zerolog"
)

// GuestPropertySetter is the CLI fallback transport contract,
// satisfied by vbox.ManageClient.
type GuestPropertySetter interface {
	SetGuestProperty(ctx context.Context, vmName, key, value string) error
}

// PropertyChannel publishes samples into the hypervisor's guest
// property store. Each write first tries the management-session
// transport and falls back to the CLI tool; the two are tried
// independently for every key. In demo mode no transport is touched
// and writes only report what they would have done.
type PropertyChannel struct {
	vmName     string
	sessions   vbox.SessionManager
	capability vbox.Capability
	cli        GuestPropertySetter
	demoMode   bool
	logger     zerolog.Logger
}

// NewPropertyChannel creates a PropertyChannel for the named VM. The
// session manager may be nil when the capability descriptor marks the
// session transport unavailable.
func NewPropertyChannel(vmName string, sessions vbox.SessionManager, capability vbox.Capability,
	cli GuestPropertySetter, demoMode bool, logger zerolog.Logger) *PropertyChannel {
	return &PropertyChannel{
		vmName:     vmName,
		sessions:   sessions,
		capability: capability,
		cli:        cli,
		demoMode:   demoMode,
		logger:     logger,
	}
}

// Name identifies the channel in logs.
func (c *PropertyChannel) Name() string {
	return "guest-property"
}

// Publish writes all four property records for the sample. A failed
// key is logged and skipped; the remaining keys are still written.
// The returned error aggregates per-key failures and is informational
// only, the publish cycle continues regardless.
func (c *PropertyChannel) Publish(sample location.Sample) error {
	records, err := SampleRecords(sample)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to flatten sample into property records")
		return err
	}

	var failures []error
	for _, record := range records {
		if err := c.SetProperty(record.Key, record.Value); err != nil {
			failures = append(failures, err)
		}
	}
	return errors.Join(failures...)
}

// SetProperty writes one guest property, trying the session transport
// first and the CLI tool second.
func (c *PropertyChannel) SetProperty(key, value string) error {
	if c.demoMode {
		c.logger.Info().
			Str("key", key).
			Str("value", truncateForDisplay(value)).
			Msg("[demo] Would set guest property")
		return nil
	}

	if c.capability.SessionAvailable && c.sessions != nil {
		err := c.setViaSession(key, value)
		if err == nil {
			c.logger.Debug().
				Str("key", key).
				Str("value", truncateForDisplay(value)).
				Msg("Set guest property via session")
			return nil
		}
		c.logger.Debug().
			Err(err).
			Str("key", key).
			Msg("Session transport failed, falling back to CLI")
	}

	if err := c.setViaCLI(key, value); err != nil {
		c.logger.Error().
			Err(err).
			Str("key", key).
			Msg("Failed to set guest property")
		return err
	}

	c.logger.Debug().
		Str("key", key).
		Str("value", truncateForDisplay(value)).
		Msg("Set guest property via CLI")
	return nil
}

// setViaSession performs the lock, set, unlock sequence against a
// freshly acquired management session.
func (c *PropertyChannel) setViaSession(key, value string) error {
	session, err := c.sessions.AcquireSession()
	if err != nil {
		return err
	}

	if err := session.Lock(); err != nil {
		return err
	}
	defer func() {
		if err := session.Unlock(); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to unlock management session")
		}
	}()

	return session.SetProperty(key, value)
}

// setViaCLI invokes the external tool. A permanently missing binary
// flips the channel into demo mode for the rest of its lifetime.
func (c *PropertyChannel) setViaCLI(key, value string) error {
	err := c.cli.SetGuestProperty(context.Background(), c.vmName, key, value)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, vbox.ErrToolNotFound):
		c.demoMode = true
		c.logger.Warn().
			Err(err).
			Msg("VBoxManage not found, switching channel to demo mode")
	case errors.Is(err, vbox.ErrTimeout):
		c.logger.Warn().
			Err(err).
			Str("key", key).
			Msg("VBoxManage command timed out")
	}
	return err
}
