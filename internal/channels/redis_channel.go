package channels

import (
	"context"
	"errors"
	"time"

	"github.com/benmeehan/vbox-gps-agent/pkg/location"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisChannel mirrors the four property records into Redis under the
// same keys, optionally with an expiry so stale positions age out.
type RedisChannel struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisChannel creates a RedisChannel on top of an initialized
// client. A zero TTL keeps keys forever.
func NewRedisChannel(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisChannel {
	return &RedisChannel{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Name identifies the channel in logs.
func (c *RedisChannel) Name() string {
	return "redis"
}

// Publish writes all four records. Keys fail independently; the
// aggregate error is informational only.
func (c *RedisChannel) Publish(sample location.Sample) error {
	records, err := SampleRecords(sample)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to flatten sample into property records")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var failures []error
	for _, record := range records {
		if err := c.client.Set(ctx, record.Key, record.Value, c.ttl).Err(); err != nil {
			c.logger.Error().
				Err(err).
				Str("key", record.Key).
				Msg("Failed to mirror property record into Redis")
			failures = append(failures, err)
		}
	}
	return errors.Join(failures...)
}
