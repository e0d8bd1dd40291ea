package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/benmeehan/vbox-gps-agent/internal/channels"
	"github.com/benmeehan/vbox-gps-agent/internal/constants"
	"github.com/benmeehan/vbox-gps-agent/pkg/location"
	"github.com/benmeehan/vbox-gps-agent/pkg/vbox"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockChannel is a mock implementation of the channels.Channel interface.
type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) Name() string {
	return m.Called().String(0)
}

func (m *MockChannel) Publish(sample location.Sample) error {
	return m.Called(sample).Error(0)
}

// MockManagedChannel additionally owns a background resource.
type MockManagedChannel struct {
	MockChannel
}

func (m *MockManagedChannel) Start() error {
	return m.Called().Error(0)
}

func (m *MockManagedChannel) Stop() error {
	return m.Called().Error(0)
}

func newTestProvider() location.Provider {
	return location.NewSimulatedProvider(location.DefaultBaseLatitude, location.DefaultBaseLongitude)
}

// TestPublisherService_StartStop verifies the lifecycle guards.
func TestPublisherService_StartStop(t *testing.T) {
	ch := new(MockChannel)
	ch.On("Name").Return("mock")
	ch.On("Publish", mock.Anything).Return(nil)

	p := NewPublisherService(time.Second, newTestProvider(), []channels.Channel{ch}, zerolog.Nop())

	err := p.Start()
	assert.NoError(t, err)

	err = p.Start()
	assert.Error(t, err)
	assert.Equal(t, "publisher service is already running", err.Error())

	err = p.Stop()
	assert.NoError(t, err)

	err = p.Stop()
	assert.Error(t, err)
	assert.Equal(t, "publisher service is not running", err.Error())
}

// TestPublisherService_PublishesOnTicks verifies one publish per tick
// plus the immediate first cycle.
func TestPublisherService_PublishesOnTicks(t *testing.T) {
	ch := new(MockChannel)
	ch.On("Name").Return("mock")
	ch.On("Publish", mock.Anything).Return(nil)

	p := NewPublisherService(100*time.Millisecond, newTestProvider(), []channels.Channel{ch}, zerolog.Nop())

	require.NoError(t, p.Start())
	time.Sleep(350 * time.Millisecond)
	require.NoError(t, p.Stop())

	calls := 0
	for _, call := range ch.Calls {
		if call.Method == "Publish" {
			calls++
		}
	}
	assert.GreaterOrEqual(t, calls, 3)
}

// TestPublisherService_ChannelFailureDoesNotAbort verifies the cycle
// keeps ticking when every publish fails.
func TestPublisherService_ChannelFailureDoesNotAbort(t *testing.T) {
	failing := new(MockChannel)
	failing.On("Name").Return("failing")
	failing.On("Publish", mock.Anything).Return(errors.New("both transports failed"))

	healthy := new(MockChannel)
	healthy.On("Name").Return("healthy")
	healthy.On("Publish", mock.Anything).Return(nil)

	p := NewPublisherService(100*time.Millisecond, newTestProvider(), []channels.Channel{failing, healthy}, zerolog.Nop())

	require.NoError(t, p.Start())
	time.Sleep(250 * time.Millisecond)
	require.NoError(t, p.Stop())

	// Both channels keep receiving samples on later ticks
	assert.GreaterOrEqual(t, countCalls(healthy, "Publish"), 2)
	assert.GreaterOrEqual(t, countCalls(failing, "Publish"), 2)
}

func countCalls(m *MockChannel, method string) int {
	n := 0
	for _, call := range m.Calls {
		if call.Method == method {
			n++
		}
	}
	return n
}

// TestPublisherService_DropsChannelThatFailsToStart verifies a channel
// whose startup fails is excluded while the service continues.
func TestPublisherService_DropsChannelThatFailsToStart(t *testing.T) {
	unbindable := new(MockManagedChannel)
	unbindable.On("Name").Return("http")
	unbindable.On("Start").Return(errors.New("failed to bind HTTP listener on port 8089: address already in use"))

	healthy := new(MockChannel)
	healthy.On("Name").Return("guest-property")
	healthy.On("Publish", mock.Anything).Return(nil)

	p := NewPublisherService(100*time.Millisecond, newTestProvider(), []channels.Channel{unbindable, healthy}, zerolog.Nop())

	require.NoError(t, p.Start())
	time.Sleep(150 * time.Millisecond)
	require.NoError(t, p.Stop())

	unbindable.AssertNotCalled(t, "Publish", mock.Anything)
	unbindable.AssertNotCalled(t, "Stop")
	assert.GreaterOrEqual(t, countCalls(healthy, "Publish"), 1)
}

// TestPublisherService_StopsOwnedChannels verifies started channels
// get stopped on shutdown.
func TestPublisherService_StopsOwnedChannels(t *testing.T) {
	managed := new(MockManagedChannel)
	managed.On("Name").Return("http")
	managed.On("Start").Return(nil)
	managed.On("Stop").Return(nil)
	managed.On("Publish", mock.Anything).Return(nil)

	p := NewPublisherService(time.Second, newTestProvider(), []channels.Channel{managed}, zerolog.Nop())

	require.NoError(t, p.Start())
	require.NoError(t, p.Stop())

	managed.AssertCalled(t, "Start")
	managed.AssertCalled(t, "Stop")
}

// TestPublisherService_EndToEnd runs the publish/fetch path through
// the in-memory property store: three one-second-spaced cycles on the
// host side, each readable and parseable on the guest side.
func TestPublisherService_EndToEnd(t *testing.T) {
	store := vbox.NewMemoryStore()
	provider := newTestProvider()

	channel := channels.NewPropertyChannel("TestVM", store, vbox.Capability{SessionAvailable: true}, nil, false, zerolog.Nop())
	p := NewPublisherService(time.Second, provider, []channels.Channel{channel}, zerolog.Nop())
	consumer := NewConsumerClient(time.Second, false, store, zerolog.Nop())

	require.NoError(t, p.Start())
	defer func() { _ = p.Stop() }()

	var timestamps []string
	for i := 0; i < 3; i++ {
		time.Sleep(1050 * time.Millisecond)

		sample, ok := consumer.FetchLocation()
		require.True(t, ok)
		assert.Equal(t, location.SourceSimulated, sample.Source)
		timestamps = append(timestamps, sample.Timestamp)

		// The scalar keys track the JSON body
		raw, found, err := store.GetGuestProperty(context.Background(), constants.PropertyKeyLocation)
		require.NoError(t, err)
		require.True(t, found)
		var stored location.Sample
		require.NoError(t, json.Unmarshal([]byte(raw), &stored))
		assert.Equal(t, stored, sample)
	}

	// Samples one second apart are distinct readings
	assert.NotEqual(t, timestamps[0], timestamps[1])
	assert.NotEqual(t, timestamps[1], timestamps[2])
}
