package location

import (
	"runtime"

	"github.com/rs/zerolog"
)

// Platform identifies the host operating system as a closed variant,
// resolved once when the provider is constructed.
type Platform int

const (
	PlatformOther Platform = iota
	PlatformWindows
	PlatformLinux
	PlatformMacOS
)

// String returns the platform name for logging.
func (p Platform) String() string {
	switch p {
	case PlatformWindows:
		return "windows"
	case PlatformLinux:
		return "linux"
	case PlatformMacOS:
		return "macos"
	default:
		return "other"
	}
}

// DetectPlatform maps the running OS onto the closed platform variant.
func DetectPlatform() Platform {
	switch runtime.GOOS {
	case "windows":
		return PlatformWindows
	case "linux":
		return PlatformLinux
	case "darwin":
		return PlatformMacOS
	default:
		return PlatformOther
	}
}

const stubErrorMessage = "Not implemented - use demo mode"

// PlatformProvider dispatches to a per-OS location handler through a
// function table resolved at construction. Every current handler is a
// stub that returns a zeroed, error-flagged sample; unrecognized
// platforms and handler failures fall back to the simulated branch so
// Sample never fails.
type PlatformProvider struct {
	platform Platform
	handlers map[Platform]func() (Sample, error)
	fallback *SimulatedProvider
	logger   zerolog.Logger
}

// NewPlatformProvider resolves the host platform and builds the
// handler table. The fallback simulated provider is centered on the
// given base coordinates.
func NewPlatformProvider(baseLat, baseLon float64, logger zerolog.Logger) *PlatformProvider {
	p := &PlatformProvider{
		platform: DetectPlatform(),
		fallback: NewSimulatedProvider(baseLat, baseLon),
		logger:   logger,
	}
	p.handlers = map[Platform]func() (Sample, error){
		PlatformWindows: p.windowsLocation,
		PlatformLinux:   p.linuxLocation,
		PlatformMacOS:   p.macosLocation,
	}
	return p
}

// Sample dispatches to the resolved platform handler. Any missing
// handler or handler error routes to the simulated branch.
func (p *PlatformProvider) Sample() Sample {
	handler, ok := p.handlers[p.platform]
	if !ok {
		p.logger.Debug().
			Str("platform", p.platform.String()).
			Msg("No platform location handler, falling back to simulated data")
		return p.fallback.Sample()
	}

	sample, err := handler()
	if err != nil {
		p.logger.Warn().
			Err(err).
			Str("platform", p.platform.String()).
			Msg("Platform location handler failed, falling back to simulated data")
		return p.fallback.Sample()
	}

	return sample
}

// Close implements the Provider interface.
func (p *PlatformProvider) Close() error {
	return p.fallback.Close()
}

func stubSample(source string) (Sample, error) {
	return Sample{
		Timestamp: UTCTimestamp(),
		Source:    source,
		Error:     stubErrorMessage,
	}, nil
}

// windowsLocation would use the Windows Location API.
func (p *PlatformProvider) windowsLocation() (Sample, error) {
	return stubSample(SourceWindowsLocationAPI)
}

// linuxLocation would use GeoClue over D-Bus.
func (p *PlatformProvider) linuxLocation() (Sample, error) {
	return stubSample(SourceGeoClue)
}

// macosLocation would use CoreLocation.
func (p *PlatformProvider) macosLocation() (Sample, error) {
	return stubSample(SourceCoreLocation)
}
