package gamification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/learnloop/platform/internal/domain"
	"github.com/redis/go-redis/v9"
)

// windowTTL bounds how long archived monthly/weekly sorted sets linger in
// Redis after their period rolls over. Postgres remains the durable archive.
const windowTTL = 35 * 24 * time.Hour

// RankMirror is the cache surface the engine writes scores through. Postgres
// holds the authoritative dense ranks; a mirror answer is a hint, never a
// substitute for the database.
type RankMirror interface {
	SetScore(ctx context.Context, period domain.Period, periodKey string, userID uuid.UUID, points int) error
	HasMember(ctx context.Context, period domain.Period, periodKey string, userID uuid.UUID) (present, ok bool)
}

// RankCache mirrors the current (period, periodKey) scores into Redis sorted
// sets. The mirror is best effort: writes are not verified against the
// database, so a missing member must not be read as "not ranked".
type RankCache struct {
	client *redis.Client
}

// NewRankCache wraps an already-connected Redis client.
func NewRankCache(client *redis.Client) *RankCache {
	return &RankCache{client: client}
}

func cacheKey(period domain.Period, periodKey string) string {
	return fmt.Sprintf("leaderboard:%s:%s", period, periodKey)
}

// SetScore writes a user's committed point total into the period's sorted set.
func (c *RankCache) SetScore(ctx context.Context, period domain.Period, periodKey string, userID uuid.UUID, points int) error {
	key := cacheKey(period, periodKey)
	if err := c.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(points),
		Member: userID.String(),
	}).Err(); err != nil {
		return fmt.Errorf("zadd %s: %w", key, err)
	}
	if period != domain.PeriodAllTime {
		c.client.Expire(ctx, key, windowTTL)
	}
	return nil
}

// HasMember reports whether the user appears in the period's sorted set.
// ok is false when Redis could not answer. A (false, true) result only means
// the mirror has no score for the user; since writes are best effort, the
// database row may still exist.
func (c *RankCache) HasMember(ctx context.Context, period domain.Period, periodKey string, userID uuid.UUID) (present, ok bool) {
	err := c.client.ZScore(ctx, cacheKey(period, periodKey), userID.String()).Err()
	switch {
	case err == redis.Nil:
		return false, true
	case err != nil:
		return false, false
	default:
		return true, true
	}
}
