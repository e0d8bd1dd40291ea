package location

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestSimulatedProvider_Sample_JitterBounds verifies every simulated
// reading stays inside the documented jitter and range bounds.
func TestSimulatedProvider_Sample_JitterBounds(t *testing.T) {
	p := NewSimulatedProvider(DefaultBaseLatitude, DefaultBaseLongitude)

	for i := 0; i < 200; i++ {
		s := p.Sample()

		assert.GreaterOrEqual(t, s.Latitude, DefaultBaseLatitude-0.01)
		assert.LessOrEqual(t, s.Latitude, DefaultBaseLatitude+0.01)
		assert.GreaterOrEqual(t, s.Longitude, DefaultBaseLongitude-0.01)
		assert.LessOrEqual(t, s.Longitude, DefaultBaseLongitude+0.01)
		assert.GreaterOrEqual(t, s.Altitude, 0.0)
		assert.LessOrEqual(t, s.Altitude, 100.0)
		assert.GreaterOrEqual(t, s.Accuracy, 5.0)
		assert.LessOrEqual(t, s.Accuracy, 20.0)
		assert.Equal(t, SourceSimulated, s.Source)
		assert.Empty(t, s.Error)
	}
}

// TestSimulatedProvider_Sample_Timestamp verifies the timestamp is
// fresh, UTC, and carries the trailing Z.
func TestSimulatedProvider_Sample_Timestamp(t *testing.T) {
	p := NewSimulatedProvider(DefaultBaseLatitude, DefaultBaseLongitude)

	s := p.Sample()

	assert.True(t, strings.HasSuffix(s.Timestamp, "Z"))
	parsed, err := time.Parse("2006-01-02T15:04:05.000000Z", s.Timestamp)
	assert.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), parsed, 5*time.Second)
}

// TestSample_JSONRoundTrip verifies serializing a sample and parsing
// it back yields field-for-field equality.
func TestSample_JSONRoundTrip(t *testing.T) {
	p := NewSimulatedProvider(DefaultBaseLatitude, DefaultBaseLongitude)
	original := p.Sample()

	payload, err := json.Marshal(original)
	assert.NoError(t, err)

	var decoded Sample
	err = json.Unmarshal(payload, &decoded)
	assert.NoError(t, err)
	assert.Equal(t, original, decoded)
}

// TestSample_JSONOmitsEmptyError verifies the error field stays out
// of the wire format for real readings.
func TestSample_JSONOmitsEmptyError(t *testing.T) {
	p := NewSimulatedProvider(DefaultBaseLatitude, DefaultBaseLongitude)

	payload, err := json.Marshal(p.Sample())
	assert.NoError(t, err)
	assert.NotContains(t, string(payload), "\"error\"")
}

// TestSimulatedProvider_Sample_Concurrent verifies sampling is safe
// under concurrent callers, as the HTTP handlers require.
func TestSimulatedProvider_Sample_Concurrent(t *testing.T) {
	p := NewSimulatedProvider(DefaultBaseLatitude, DefaultBaseLongitude)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := p.Sample()
				assert.Equal(t, SourceSimulated, s.Source)
			}
		}()
	}
	wg.Wait()
}
