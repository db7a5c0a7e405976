// Package events publishes ingestion events for downstream workers
// (summary emails, CRM sync). Publishing is best effort.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// DefaultQueue is the Redis list consumers BRPOP from.
const DefaultQueue = "events:calls"

const TypeCallIngested = "call.ingested"

// CallIngested is emitted once a call record is stored.
type CallIngested struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	OrgID           string    `json:"org_id"`
	CallID          string    `json:"call_id"`
	CallerNumber    string    `json:"caller_number,omitempty"`
	CallerName      string    `json:"caller_name,omitempty"`
	DurationSeconds int       `json:"duration_seconds"`
	Summary         string    `json:"summary,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

type Publisher interface {
	PublishCallIngested(ctx context.Context, e CallIngested) error
}

// RedisPublisher LPUSHes JSON events onto a list.
type RedisPublisher struct {
	rdb   *redis.Client
	queue string
	clock func() time.Time
}

func NewRedisPublisher(rdb *redis.Client, queue string) *RedisPublisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return &RedisPublisher{rdb: rdb, queue: queue, clock: time.Now}
}

func (p *RedisPublisher) PublishCallIngested(ctx context.Context, e CallIngested) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Type = TypeCallIngested
	if e.OccurredAt.IsZero() {
		e.OccurredAt = p.clock().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return eris.Wrap(err, "events: encode")
	}
	if err := p.rdb.LPush(ctx, p.queue, b).Err(); err != nil {
		return eris.Wrapf(err, "events: push %s", p.queue)
	}
	return nil
}

// NopPublisher drops every event. Used when Redis is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishCallIngested(context.Context, CallIngested) error { return nil }
