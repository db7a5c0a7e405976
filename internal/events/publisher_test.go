package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisher_PushesJSON(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer rdb.Close()

	p := NewRedisPublisher(rdb, "")
	require.NoError(t, p.PublishCallIngested(context.Background(), CallIngested{
		OrgID:           "org-1",
		CallID:          "call-1",
		CallerNumber:    "+15551234567",
		CallerName:      "Pat",
		DurationSeconds: 42,
	}))

	items, err := srv.List(DefaultQueue)
	require.NoError(t, err)
	require.Len(t, items, 1)

	var got CallIngested
	require.NoError(t, json.Unmarshal([]byte(items[0]), &got))
	assert.Equal(t, TypeCallIngested, got.Type)
	assert.Equal(t, "call-1", got.CallID)
	assert.Equal(t, 42, got.DurationSeconds)
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.OccurredAt.IsZero())
}

func TestRedisPublisher_ErrorWhenDown(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr(), MaxRetries: -1})
	defer rdb.Close()
	srv.Close()

	err := NewRedisPublisher(rdb, "q").PublishCallIngested(context.Background(), CallIngested{CallID: "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "events: push q")
}
