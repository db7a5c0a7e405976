package assistants

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// DefaultCacheTTL bounds how long a re-pointed assistant can stay stale.
const DefaultCacheTTL = 5 * time.Minute

const cacheKeyPrefix = "assistant:"

// CachedDirectory is a Redis read-through cache in front of a Directory.
//
// Only hits are cached. Redis failures are logged and the lookup falls
// through to the wrapped Directory.
type CachedDirectory struct {
	next Directory
	rdb  *redis.Client
	ttl  time.Duration
	log  *slog.Logger
}

func NewCachedDirectory(next Directory, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *CachedDirectory {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &CachedDirectory{next: next, rdb: rdb, ttl: ttl, log: log}
}

func (d *CachedDirectory) LookupAssistant(ctx context.Context, externalID string) (Assistant, error) {
	if externalID == "" {
		return Assistant{}, ErrNotFound
	}
	key := cacheKeyPrefix + externalID

	raw, err := d.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var a Assistant
		if jsonErr := json.Unmarshal(raw, &a); jsonErr == nil && a.OrgID != "" {
			return a, nil
		}
		d.log.Warn("assistant cache entry corrupt", "key", key)
	case eris.Is(err, redis.Nil):
	default:
		d.log.Warn("assistant cache read failed", "key", key, "err", err)
	}

	a, err := d.next.LookupAssistant(ctx, externalID)
	if err != nil {
		return Assistant{}, err
	}

	if b, err := json.Marshal(a); err == nil {
		if err := d.rdb.Set(ctx, key, b, d.ttl).Err(); err != nil {
			d.log.Warn("assistant cache write failed", "key", key, "err", err)
		}
	}
	return a, nil
}

// Invalidate drops the cached entry for externalID.
func (d *CachedDirectory) Invalidate(ctx context.Context, externalID string) error {
	if err := d.rdb.Del(ctx, cacheKeyPrefix+externalID).Err(); err != nil {
		return eris.Wrap(err, "assistants: invalidate")
	}
	return nil
}
