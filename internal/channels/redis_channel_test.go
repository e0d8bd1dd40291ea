package channels

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// TestRedisChannel_Publish_ServerUnreachable verifies an unreachable
// server surfaces an aggregate error without panicking, keeping the
// publish cycle alive.
func TestRedisChannel_Publish_ServerUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisChannel(client, time.Minute, zerolog.Nop())

	err := c.Publish(testSample())

	assert.Error(t, err)
	assert.Equal(t, "redis", c.Name())
}
