package location

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// TestPlatformProvider_Sample_StubBranches drives every implemented
// platform branch and checks the zeroed, error-flagged stub contract.
func TestPlatformProvider_Sample_StubBranches(t *testing.T) {
	cases := []struct {
		platform Platform
		source   string
	}{
		{PlatformWindows, SourceWindowsLocationAPI},
		{PlatformLinux, SourceGeoClue},
		{PlatformMacOS, SourceCoreLocation},
	}

	for _, tc := range cases {
		p := NewPlatformProvider(DefaultBaseLatitude, DefaultBaseLongitude, zerolog.Nop())
		p.platform = tc.platform

		s := p.Sample()

		assert.True(t, s.IsStub())
		assert.Equal(t, tc.source, s.Source)
		assert.Equal(t, 0.0, s.Latitude)
		assert.Equal(t, 0.0, s.Longitude)
		assert.NotEmpty(t, s.Timestamp)
	}
}

// TestPlatformProvider_Sample_UnknownPlatformFallsBack verifies an
// unrecognized platform routes to the simulated branch.
func TestPlatformProvider_Sample_UnknownPlatformFallsBack(t *testing.T) {
	p := NewPlatformProvider(DefaultBaseLatitude, DefaultBaseLongitude, zerolog.Nop())
	p.platform = PlatformOther

	s := p.Sample()

	assert.Equal(t, SourceSimulated, s.Source)
	assert.False(t, s.IsStub())
}

// TestPlatformProvider_Sample_HandlerErrorFallsBack verifies a failing
// handler never propagates: the provider stays total.
func TestPlatformProvider_Sample_HandlerErrorFallsBack(t *testing.T) {
	p := NewPlatformProvider(DefaultBaseLatitude, DefaultBaseLongitude, zerolog.Nop())
	p.platform = PlatformLinux
	p.handlers[PlatformLinux] = func() (Sample, error) {
		return Sample{}, errors.New("dbus unavailable")
	}

	s := p.Sample()

	assert.Equal(t, SourceSimulated, s.Source)
}

// TestDetectPlatform_Closed verifies detection always lands inside
// the closed variant.
func TestDetectPlatform_Closed(t *testing.T) {
	p := DetectPlatform()
	assert.Contains(t, []Platform{PlatformWindows, PlatformLinux, PlatformMacOS, PlatformOther}, p)
}
