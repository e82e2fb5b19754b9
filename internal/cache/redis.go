// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list the engine pushes operational events to.
var DefaultQueueName = "uno_engine_events"

// Event is an operational notification (session lifecycle, sweep results,
// snapshot activity) for whatever dashboarding or bookkeeping consumes the
// queue. It carries no hand contents.
type Event struct {
	Type      string                 `json:"type"`
	Key       string                 `json:"key,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp int64                  `json:"timestamp"`
}

// Event types pushed by the engine.
const (
	EventSessionCreated   = "session_created"
	EventSessionStarted   = "session_started"
	EventSessionFinished  = "session_finished"
	EventSessionsSwept    = "sessions_swept"
	EventSnapshotSaved    = "snapshot_saved"
	EventSnapshotRestored = "snapshot_restored"
)

// Publisher pushes events onto a Redis list. A nil Publisher is valid and
// drops everything, so callers never have to guard the optional wiring.
type Publisher struct {
	rdb   *redis.Client
	queue string
}

// Connect dials Redis and returns a ready Publisher.
func Connect(ctx context.Context, addr string, db int, queue string) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueueName
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Publisher{rdb: rdb, queue: queue}, nil
}

// Publish serializes the event and pushes it onto the queue. The timestamp
// is filled in when absent.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	if p == nil {
		return nil
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list %q: %w", p.queue, err)
	}
	return nil
}

// Close releases the underlying client.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.rdb.Close()
}
