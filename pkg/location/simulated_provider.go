package location

import (
	"math/rand"
	"sync"
	"time"
)

// Default base coordinates for the simulated random walk.
const (
	DefaultBaseLatitude  = 37.7749
	DefaultBaseLongitude = -122.4194
)

// SimulatedProvider generates jittered GPS readings around fixed base
// coordinates. It is the universal fallback for every other provider.
type SimulatedProvider struct {
	baseLat float64
	baseLon float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedProvider creates a SimulatedProvider centered on the
// given base coordinates.
func NewSimulatedProvider(baseLat, baseLon float64) *SimulatedProvider {
	return &SimulatedProvider{
		baseLat: baseLat,
		baseLon: baseLon,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Sample returns a fresh simulated reading. Latitude and longitude get
// independent uniform jitter in [-0.01, 0.01] degrees; altitude is
// uniform in [0, 100] meters and accuracy uniform in [5, 20] meters.
// Safe for concurrent use.
func (p *SimulatedProvider) Sample() Sample {
	p.mu.Lock()
	lat := p.baseLat + p.rng.Float64()*0.02 - 0.01
	lon := p.baseLon + p.rng.Float64()*0.02 - 0.01
	alt := p.rng.Float64() * 100
	acc := 5 + p.rng.Float64()*15
	p.mu.Unlock()

	return Sample{
		Latitude:  roundTo(lat, 6),
		Longitude: roundTo(lon, 6),
		Altitude:  roundTo(alt, 2),
		Accuracy:  roundTo(acc, 2),
		Timestamp: UTCTimestamp(),
		Source:    SourceSimulated,
	}
}

// Close implements the Provider interface. Nothing to release.
func (p *SimulatedProvider) Close() error {
	return nil
}
