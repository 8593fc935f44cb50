package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/krakosik/reputation/internal/dto"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// noGeneration marks a generation that could not be read. Set ignores it.
const noGeneration int64 = -1

// StatsCache is a read-through cache for per-actor stats. Errors are logged
// and reported as misses so the caller always falls back to the ledger.
//
// Entries are keyed by a per-actor generation that Invalidate bumps. Get returns
// the generation it looked under and Set writes under that generation, so stats
// computed before an invalidation land on a key nobody reads any more.
type StatsCache interface {
	Get(ctx context.Context, actorID int64) (stats dto.Stats, generation int64, ok bool)
	Set(ctx context.Context, actorID int64, generation int64, stats dto.Stats)
	Invalidate(ctx context.Context, actorID int64)
}

func newStatsCache(rdb *redis.Client, ttl time.Duration) StatsCache {
	if rdb == nil || ttl <= 0 {
		return noopStatsCache{}
	}
	return &redisStatsCache{client: rdb, ttl: ttl}
}

type redisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func statsGenerationKey(actorID int64) string {
	return fmt.Sprintf("stats:gen:%d", actorID)
}

func statsKey(actorID, generation int64) string {
	return fmt.Sprintf("stats:%d:%d", actorID, generation)
}

func (c *redisStatsCache) Get(ctx context.Context, actorID int64) (dto.Stats, int64, bool) {
	generation, err := c.client.Get(ctx, statsGenerationKey(actorID)).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.Warnf("Stats cache generation read failed for actor %d: %v", actorID, err)
			return dto.Stats{}, noGeneration, false
		}
		generation = 0
	}

	raw, err := c.client.Get(ctx, statsKey(actorID, generation)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.Warnf("Stats cache read failed for actor %d: %v", actorID, err)
			return dto.Stats{}, noGeneration, false
		}
		return dto.Stats{}, generation, false
	}

	var stats dto.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		logrus.Warnf("Stats cache entry for actor %d is corrupt: %v", actorID, err)
		return dto.Stats{}, generation, false
	}
	return stats, generation, true
}

func (c *redisStatsCache) Set(ctx context.Context, actorID int64, generation int64, stats dto.Stats) {
	if generation == noGeneration {
		return
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		logrus.Warnf("Error marshaling stats for actor %d: %v", actorID, err)
		return
	}
	if err := c.client.Set(ctx, statsKey(actorID, generation), raw, c.ttl).Err(); err != nil {
		logrus.Warnf("Stats cache write failed for actor %d: %v", actorID, err)
	}
}

// Invalidate moves the actor to a new generation. The generation key has no TTL:
// losing it would send readers back to generation 0.
func (c *redisStatsCache) Invalidate(ctx context.Context, actorID int64) {
	if err := c.client.Incr(ctx, statsGenerationKey(actorID)).Err(); err != nil {
		logrus.Warnf("Stats cache invalidation failed for actor %d: %v", actorID, err)
	}
}

type noopStatsCache struct{}

func (noopStatsCache) Get(context.Context, int64) (dto.Stats, int64, bool) {
	return dto.Stats{}, noGeneration, false
}

func (noopStatsCache) Set(context.Context, int64, int64, dto.Stats) {}

func (noopStatsCache) Invalidate(context.Context, int64) {}
