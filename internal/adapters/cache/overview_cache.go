package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-calendar/internal/core/domain"
	"github.com/comitanigiacomo/kanso-calendar/internal/core/services"
	"github.com/comitanigiacomo/kanso-calendar/internal/metrics"
)

var _ services.CountCache = (*OverviewCache)(nil)

const DefaultOverviewTTL = 10 * time.Minute

// OverviewCache keeps one redis hash per user, one field per (timezone, end
// date, generation), so a single DEL drops every cached window of that user.
// Invalidate bumps the generation first: a reader that computed its counts
// before the bump writes a field nobody asks for again. The generation key has
// no expiry so a counter can never restart under a live field.
type OverviewCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewOverviewCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *OverviewCache {
	if ttl <= 0 {
		ttl = DefaultOverviewTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OverviewCache{rdb: rdb, ttl: ttl, log: log.Named("overview_cache")}
}

func hashKey(userID string) string {
	return fmt.Sprintf("overview:%s", userID)
}

func generationKey(userID string) string {
	return fmt.Sprintf("overview:gen:%s", userID)
}

func field(key services.CountKey) string {
	return fmt.Sprintf("%s|%s|%d", key.Timezone, key.EndDate, key.Generation)
}

// Generation returns -1 when redis cannot be read; such keys are never cached.
func (c *OverviewCache) Generation(ctx context.Context, userID string) int64 {
	gen, err := c.rdb.Get(ctx, generationKey(userID)).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0
	case err != nil:
		c.log.Warn("redis generation read error", zap.Error(err))
		return -1
	}
	return gen
}

func (c *OverviewCache) Get(ctx context.Context, key services.CountKey) (domain.CompletionCount, bool) {
	if key.Generation < 0 {
		metrics.CacheMiss()
		return nil, false
	}

	raw, err := c.rdb.HGet(ctx, hashKey(key.UserID), field(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("redis read error", zap.Error(err))
		}
		metrics.CacheMiss()
		return nil, false
	}

	var counts domain.CompletionCount
	if err := json.Unmarshal(raw, &counts); err != nil {
		c.log.Warn("corrupted overview entry, dropping", zap.String("user_id", key.UserID))
		c.rdb.HDel(ctx, hashKey(key.UserID), field(key))
		metrics.CacheMiss()
		return nil, false
	}

	metrics.CacheHit()
	return counts, true
}

func (c *OverviewCache) Set(ctx context.Context, key services.CountKey, counts domain.CompletionCount) {
	if key.Generation < 0 {
		return
	}

	data, err := json.Marshal(counts)
	if err != nil {
		return
	}

	hk := hashKey(key.UserID)
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, hk, field(key), data)
	pipe.Expire(ctx, hk, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("redis set error", zap.Error(err))
	}
}

func (c *OverviewCache) Invalidate(ctx context.Context, userID string) {
	gk := generationKey(userID)
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, gk)
	pipe.Del(ctx, hashKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("failed to invalidate", zap.String("user_id", userID), zap.Error(err))
	}
}
