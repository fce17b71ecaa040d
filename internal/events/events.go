package events

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding
	"time"          // Event timestamps

	"github.com/redis/go-redis/v9" // Redis client
)

// Event types published after successful writes
const (
	MessageCreated     = "message.created"
	MessageDeleted     = "message.deleted"
	TransactionCreated = "transaction.created"
)

// Event is the JSON payload sent to subscribers of a partition channel
type Event struct {
	Type      string    `json:"type"`       // One of the event type constants
	GroupName string    `json:"group_name"` // Partition the write belongs to
	Data      any       `json:"data"`       // Created record, or the deleted id
	At        time.Time `json:"at"`         // Publish time
}

// Publisher fans out write events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// RedisPublisher publishes events on one Redis channel per partition
type RedisPublisher struct {
	rdb    *redis.Client // Redis client
	prefix string        // Channel prefix
}

// NewRedisPublisher wraps an existing client
func NewRedisPublisher(rdb *redis.Client, prefix string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, prefix: prefix}
}

// Channel returns the channel name for a partition
func (p *RedisPublisher) Channel(groupName string) string {
	return p.prefix + ":" + groupName
}

// Publish marshals e and sends it to the partition channel
func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b, err := json.Marshal(e) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return p.rdb.Publish(ctx, p.Channel(e.GroupName), b).Err()
}

// Close releases the client's connection pool
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}

// Nop drops every event. Used when Redis is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (Nop) Close() error { return nil }
