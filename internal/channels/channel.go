package channels

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/benmeehan/vbox-gps-agent/internal/constants"
	"github.com/benmeehan/vbox-gps-agent/pkg/location"
)

// Channel is one outbound transport for location samples. Channels
// fail independently: a publish error on one channel never prevents
// the same sample reaching the others.
type Channel interface {
	Name() string
	Publish(sample location.Sample) error
}

// Record is one key/value pair derived from a sample.
type Record struct {
	Key   string
	Value string
}

// SampleRecords flattens a sample into the four fixed property
// records: the full JSON body plus stringified scalars.
func SampleRecords(sample location.Sample) ([]Record, error) {
	payload, err := json.Marshal(sample)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize sample: %w", err)
	}

	return []Record{
		{Key: constants.PropertyKeyLocation, Value: string(payload)},
		{Key: constants.PropertyKeyLatitude, Value: strconv.FormatFloat(sample.Latitude, 'f', -1, 64)},
		{Key: constants.PropertyKeyLongitude, Value: strconv.FormatFloat(sample.Longitude, 'f', -1, 64)},
		{Key: constants.PropertyKeyTimestamp, Value: sample.Timestamp},
	}, nil
}

// truncateForDisplay shortens property values for log output.
func truncateForDisplay(value string) string {
	if len(value) > constants.DisplayValueLimit {
		return value[:constants.DisplayValueLimit] + "..."
	}
	return value
}
