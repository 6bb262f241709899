package gamification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/learnloop/platform/internal/domain"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GetPoints returns a user's points snapshot, creating the zeroed record on
// first read so presentation code never sees a not-found.
func (e *Engine) GetPoints(ctx context.Context, userID uuid.UUID) (*domain.UserPoints, error) {
	if err := e.points.Ensure(ctx, e.pool, userID); err != nil {
		return nil, err
	}
	up, err := e.points.Find(ctx, e.pool, userID)
	if err != nil {
		return nil, err
	}
	if up == nil {
		return nil, domain.ErrNotFound("user points", userID.String())
	}
	return up, nil
}

// StreakInfo is the streak slice of the points snapshot.
type StreakInfo struct {
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
}

// GetStreak returns a user's current and longest daily streak.
func (e *Engine) GetStreak(ctx context.Context, userID uuid.UUID) (*StreakInfo, error) {
	up, err := e.GetPoints(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &StreakInfo{
		CurrentStreak:    up.CurrentStreak,
		LongestStreak:    up.LongestStreak,
		LastActivityDate: up.LastActivityDate,
	}, nil
}

// AchievementReport is every achievement with the user's progress plus
// summary counters.
type AchievementReport struct {
	Achievements []domain.AchievementStatus `json:"achievements"`
	Summary      domain.AchievementSummary  `json:"summary"`
}

// GetAchievements returns the full catalog annotated with the user's progress.
func (e *Engine) GetAchievements(ctx context.Context, userID uuid.UUID) (*AchievementReport, error) {
	statuses, err := e.achievements.ListWithProgress(ctx, e.pool, userID)
	if err != nil {
		return nil, err
	}

	summary := domain.AchievementSummary{Total: len(statuses)}
	for _, s := range statuses {
		if s.IsCompleted {
			summary.Completed++
			summary.PointsEarned += s.PointsEarned
		}
	}
	if summary.Total > 0 {
		summary.CompletionRate = float64(summary.Completed) / float64(summary.Total)
	}

	return &AchievementReport{Achievements: statuses, Summary: summary}, nil
}

// GetLeaderboard returns one rank-ascending page of the current snapshot for
// the period. Page numbers are 1-based.
func (e *Engine) GetLeaderboard(ctx context.Context, period domain.Period, page, limit int) (*domain.LeaderboardPage, error) {
	if !domain.ValidPeriod(period) {
		return nil, domain.ErrValidation("unknown leaderboard period: " + string(period))
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	key := PeriodKey(period, e.clock.Now())
	entries, err := e.leaderboard.ListPage(ctx, e.pool, period, key, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	total, err := e.leaderboard.Count(ctx, e.pool, period, key)
	if err != nil {
		return nil, err
	}

	return &domain.LeaderboardPage{
		Period:    period,
		PeriodKey: key,
		Page:      page,
		Limit:     limit,
		Total:     total,
		Entries:   entries,
	}, nil
}

// GetMyRank returns the user's own entry in the current snapshot, or the
// unranked sentinel for users with no activity in this periodKey. The
// leaderboard_entries table is the sole authority; the Redis mirror is
// best effort, so its misses are never trusted as "not ranked".
func (e *Engine) GetMyRank(ctx context.Context, userID uuid.UUID, period domain.Period) (*domain.MyRank, error) {
	if !domain.ValidPeriod(period) {
		return nil, domain.ErrValidation("unknown leaderboard period: " + string(period))
	}
	key := PeriodKey(period, e.clock.Now())

	entry, err := e.leaderboard.FindEntry(ctx, e.pool, userID, period, key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return &domain.MyRank{Ranked: false}, nil
	}

	// A ranked user missing from the mirror means an earlier write was
	// dropped; repair it so external mirror readers converge.
	if e.cache != nil {
		if present, ok := e.cache.HasMember(ctx, period, key, userID); ok && !present {
			if err := e.cache.SetScore(ctx, period, key, userID, entry.Points); err != nil {
				e.logger.Warn("leaderboard cache repair failed", "period", period, "error", err)
			}
		}
	}
	return &domain.MyRank{Ranked: true, Entry: entry}, nil
}

// GetRecentActivity returns a user's recent audit rows, newest first.
func (e *Engine) GetRecentActivity(ctx context.Context, userID uuid.UUID, limit int) ([]domain.ActivityEvent, error) {
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	return e.activity.ListByUser(ctx, e.pool, userID, limit)
}
