package location

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"googlemaps.github.io/maps"
)

// GoogleGeolocationProvider uses the Google Maps Geolocation API to
// get location data from nearby WiFi access points and cell towers.
// API or scan failures fall back to simulated data.
type GoogleGeolocationProvider struct {
	client     *maps.Client
	modemIndex int
	fallback   *SimulatedProvider
	logger     zerolog.Logger
}

// NewGoogleGeolocationProvider creates a GoogleGeolocationProvider
// with the given API key.
func NewGoogleGeolocationProvider(apiKey string, baseLat, baseLon float64, logger zerolog.Logger) (*GoogleGeolocationProvider, error) {
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &GoogleGeolocationProvider{
		client:   c,
		fallback: NewSimulatedProvider(baseLat, baseLon),
		logger:   logger,
	}, nil
}

// Sample geolocates via the Maps API, falling back to the simulated
// branch on any failure.
func (g *GoogleGeolocationProvider) Sample() Sample {
	sample, err := g.geolocate()
	if err != nil {
		g.logger.Warn().
			Err(err).
			Msg("Google geolocation failed, falling back to simulated data")
		return g.fallback.Sample()
	}
	return sample
}

// geolocate collects the WiFi and cell environment and asks the Maps
// API for a position estimate.
func (g *GoogleGeolocationProvider) geolocate() (Sample, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Scan failures are tolerated; the request still works on IP alone.
	wifiAPs, err := getWiFiAccessPoints(ctx)
	if err != nil {
		g.logger.Debug().Err(err).Msg("WiFi access point scan unavailable")
	}

	cellTowers, err := getCellTowers(ctx, g.modemIndex)
	if err != nil {
		g.logger.Debug().Err(err).Msg("Cell tower scan unavailable")
	}

	req := &maps.GeolocationRequest{
		ConsiderIP:       true,
		WiFiAccessPoints: wifiAPs,
		CellTowers:       cellTowers,
	}

	resp, err := g.client.Geolocate(ctx, req)
	if err != nil {
		return Sample{}, err
	}

	return Sample{
		Latitude:  roundTo(resp.Location.Lat, 6),
		Longitude: roundTo(resp.Location.Lng, 6),
		Accuracy:  roundTo(resp.Accuracy, 2),
		Timestamp: UTCTimestamp(),
		Source:    SourceGoogle,
	}, nil
}

// Close implements the Provider interface.
func (g *GoogleGeolocationProvider) Close() error {
	return g.fallback.Close()
}
