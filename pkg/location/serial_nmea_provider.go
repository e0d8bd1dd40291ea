package location

import (
	"bufio"
	"errors"
	"strings"

	"github.com/adrianmo/go-nmea"
	"github.com/rs/zerolog"
	"github.com/tarm/serial"
)

// SerialNMEAProvider retrieves location data from a GPS device
// connected via serial port. Read failures fall back to simulated
// data so the provider stays total.
type SerialNMEAProvider struct {
	port     string // Serial port to which the GPS device is connected
	baudRate int    // Baud rate for the serial communication
	fallback *SimulatedProvider
	logger   zerolog.Logger
}

// NewSerialNMEAProvider creates a SerialNMEAProvider for the given
// port and baud rate.
func NewSerialNMEAProvider(port string, baudRate int, baseLat, baseLon float64, logger zerolog.Logger) *SerialNMEAProvider {
	return &SerialNMEAProvider{
		port:     port,
		baudRate: baudRate,
		fallback: NewSimulatedProvider(baseLat, baseLon),
		logger:   logger,
	}
}

// Sample reads one GGA fix from the device, falling back to the
// simulated branch if the device cannot be read.
func (d *SerialNMEAProvider) Sample() Sample {
	sample, err := d.readFix()
	if err != nil {
		d.logger.Warn().
			Err(err).
			Str("port", d.port).
			Msg("Failed to read GPS fix from serial device, falling back to simulated data")
		return d.fallback.Sample()
	}
	return sample
}

// readFix opens the serial port and scans for the first GGA sentence.
func (d *SerialNMEAProvider) readFix() (Sample, error) {
	c := &serial.Config{Name: d.port, Baud: d.baudRate}
	s, err := serial.OpenPort(c)
	if err != nil {
		return Sample{}, err
	}
	defer s.Close()

	scanner := bufio.NewScanner(s)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "$GPGGA") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			return Sample{}, err
		}

		if gga, ok := sentence.(nmea.GGA); ok {
			return Sample{
				Latitude:  roundTo(gga.Latitude, 6),
				Longitude: roundTo(gga.Longitude, 6),
				Altitude:  roundTo(gga.Altitude, 2),
				Accuracy:  roundTo(float64(gga.HDOP), 2), // HDOP as a proxy for accuracy
				Timestamp: UTCTimestamp(),
				Source:    SourceSerialGPS,
			}, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return Sample{}, err
	}

	return Sample{}, errors.New("no valid GPS data found")
}

// Close implements the Provider interface. The port is opened per
// read, so there is nothing held open between samples.
func (d *SerialNMEAProvider) Close() error {
	return d.fallback.Close()
}
