package gamification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnloop/platform/internal/domain"
	"github.com/learnloop/platform/internal/guard"
	"github.com/learnloop/platform/internal/repository"
)

// Engine is the single entry point the course/video/quiz/discussion modules
// call to report learning activity. One RecordActivity call fans out, in
// order, to the points ledger, the leaderboard maintainer, the achievement
// tracker, and the streak tracker — all inside one transaction.
type Engine struct {
	pool         *pgxpool.Pool
	points       repository.PointsRepository
	achievements repository.AchievementRepository
	leaderboard  repository.LeaderboardRepository
	activity     repository.ActivityRepository
	outbox       repository.OutboxRepository
	cache        RankMirror
	dedupGuard   *guard.IdempotencyGuard
	clock        Clock
	logger       *slog.Logger
	dedupEnabled bool
}

// NewEngine creates a gamification engine. cache may be nil (Redis disabled).
// When dedupEnabled is true, repeated reports for the same
// (user, activity, entity) award nothing; otherwise repeats award again.
func NewEngine(
	pool *pgxpool.Pool,
	points repository.PointsRepository,
	achievements repository.AchievementRepository,
	leaderboard repository.LeaderboardRepository,
	activity repository.ActivityRepository,
	outbox repository.OutboxRepository,
	cache RankMirror,
	clock Clock,
	logger *slog.Logger,
	dedupEnabled bool,
) *Engine {
	e := &Engine{
		pool:         pool,
		points:       points,
		achievements: achievements,
		leaderboard:  leaderboard,
		activity:     activity,
		outbox:       outbox,
		cache:        cache,
		clock:        clock,
		logger:       logger,
		dedupEnabled: dedupEnabled,
	}
	if dedupEnabled {
		e.dedupGuard = guard.NewIdempotencyGuard()
	}
	return e
}

// RecordResult is the acknowledgement returned to activity reporters.
type RecordResult struct {
	PointsAwarded int                  `json:"points_awarded"`
	Points        *domain.UserPoints   `json:"points,omitempty"`
	Unlocked      []domain.Achievement `json:"unlocked,omitempty"`
	Duplicate     bool                 `json:"duplicate,omitempty"`
}

// bonusCredit is an internal pending reward collected during achievement
// advancement and applied after the advance loop completes. Modeling the
// bonus as data rather than a recursive call keeps the call graph acyclic:
// bonus points can never re-trigger achievement advancement.
type bonusCredit struct {
	achievement domain.Achievement
}

// RecordActivity awards points for one reported activity, advances the
// matching achievements, and touches the daily streak.
func (e *Engine) RecordActivity(ctx context.Context, userID uuid.UUID, activityType domain.ActivityType, entityID string) (*RecordResult, error) {
	basePoints := domain.PointsForActivity(activityType)

	dedupKey := ""
	if e.dedupGuard != nil && entityID != "" {
		dedupKey = fmt.Sprintf("%s:%s:%s", userID, activityType, entityID)
		if res := e.dedupGuard.Check(ctx, dedupKey); !res.Allowed {
			return &RecordResult{Duplicate: true}, nil
		}
	}

	result, err := e.recordTx(ctx, userID, activityType, entityID, basePoints)
	if err != nil && dedupKey != "" {
		// Allow the caller to retry a failed report.
		e.dedupGuard.Remove(dedupKey)
	}
	if err != nil {
		return nil, err
	}

	if !result.Duplicate {
		e.mirrorRanks(ctx, userID, result.Points.TotalPoints)
	}
	return result, nil
}

func (e *Engine) recordTx(ctx context.Context, userID uuid.UUID, activityType domain.ActivityType, entityID string, basePoints int) (*RecordResult, error) {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	event := &domain.ActivityEvent{
		ID:            uuid.New(),
		UserID:        userID,
		ActivityType:  activityType,
		EntityID:      entityID,
		PointsAwarded: basePoints,
	}
	recorded, err := e.activity.Insert(ctx, tx, event, e.dedupEnabled)
	if err != nil {
		return nil, err
	}
	if !recorded {
		return &RecordResult{Duplicate: true}, nil
	}

	if err := e.points.Ensure(ctx, tx, userID); err != nil {
		return nil, err
	}

	up, err := e.credit(ctx, tx, userID, basePoints, string(activityType))
	if err != nil {
		return nil, err
	}

	unlocked, err := e.advanceAchievements(ctx, tx, userID, activityType)
	if err != nil {
		return nil, err
	}

	// Apply collected bonus credits through the same low-level path as the
	// base award. Advancement has already finished, so these credits cannot
	// re-enter the achievement loop.
	for _, bonus := range unlocked {
		up, err = e.credit(ctx, tx, userID, bonus.achievement.Points, "achievement:"+bonus.achievement.Title)
		if err != nil {
			return nil, err
		}
		if err := e.outbox.Insert(ctx, tx, domain.NewAchievementUnlockedEvent(userID, &bonus.achievement)); err != nil {
			return nil, err
		}
	}

	streak, err := e.touchStreak(ctx, tx, userID, up)
	if err != nil {
		return nil, err
	}
	up.CurrentStreak = streak.Current
	up.LongestStreak = streak.Longest
	up.LastActivityDate = streak.LastActivity

	if err := e.outbox.Insert(ctx, tx, domain.NewActivityRecordedEvent(event)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	achievements := make([]domain.Achievement, 0, len(unlocked))
	for _, b := range unlocked {
		achievements = append(achievements, b.achievement)
	}

	e.logger.Info("activity recorded",
		"user_id", userID,
		"activity_type", activityType,
		"points_awarded", basePoints,
		"unlocked", len(achievements),
	)

	return &RecordResult{
		PointsAwarded: basePoints,
		Points:        up,
		Unlocked:      achievements,
	}, nil
}

// credit is the points-ledger write primitive: one atomic add with derived
// level columns, an outbox event, and a leaderboard refresh on the new total.
func (e *Engine) credit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta int, reason string) (*domain.UserPoints, error) {
	up, err := e.points.AddPoints(ctx, tx, userID, delta)
	if err != nil {
		return nil, err
	}

	if err := e.outbox.Insert(ctx, tx, domain.NewPointsAwardedEvent(userID, delta, reason, up)); err != nil {
		return nil, err
	}
	if domain.LevelForPoints(up.TotalPoints-delta) < up.CurrentLevel {
		if err := e.outbox.Insert(ctx, tx, domain.NewLevelReachedEvent(userID, up.CurrentLevel)); err != nil {
			return nil, err
		}
	}

	if err := e.refreshLeaderboards(ctx, tx, userID, up.TotalPoints); err != nil {
		return nil, err
	}
	return up, nil
}

// refreshLeaderboards upserts the user's entry and re-ranks the current
// snapshot for every period. The fetch-rank-rewrite runs under row locks in
// the enclosing transaction, so readers never see a half-swapped snapshot.
func (e *Engine) refreshLeaderboards(ctx context.Context, tx pgx.Tx, userID uuid.UUID, total int) error {
	now := e.clock.Now()
	for _, period := range domain.Periods() {
		key := PeriodKey(period, now)
		if err := e.leaderboard.Upsert(ctx, tx, userID, period, key, total); err != nil {
			return err
		}

		entries, err := e.leaderboard.ListForUpdate(ctx, tx, period, key)
		if err != nil {
			return err
		}
		AssignRanks(entries)
		if err := e.leaderboard.UpdateRanks(ctx, tx, entries); err != nil {
			return err
		}

		if err := e.outbox.Insert(ctx, tx, domain.NewLeaderboardUpdatedEvent(period, key, userID, total)); err != nil {
			return err
		}
	}
	return nil
}

// advanceAchievements increments progress on every active achievement of the
// type mapped from the activity, completing any that reach their requirement.
// Completed achievements are returned as pending bonus credits; no points are
// applied here.
func (e *Engine) advanceAchievements(ctx context.Context, tx pgx.Tx, userID uuid.UUID, activityType domain.ActivityType) ([]bonusCredit, error) {
	achievementType, ok := domain.AchievementTypeFor(activityType)
	if !ok {
		return nil, nil
	}

	catalog, err := e.achievements.ListActiveByType(ctx, tx, achievementType)
	if err != nil {
		return nil, err
	}

	var unlocked []bonusCredit
	for _, a := range catalog {
		if err := e.achievements.EnsureProgress(ctx, tx, userID, a.ID); err != nil {
			return nil, err
		}
		progress, advanced, err := e.achievements.IncrementProgress(ctx, tx, userID, a.ID)
		if err != nil {
			return nil, err
		}
		if !advanced || progress < a.Requirement {
			continue
		}

		if err := e.achievements.MarkCompleted(ctx, tx, userID, a.ID, e.clock.Now(), a.Points); err != nil {
			return nil, err
		}
		unlocked = append(unlocked, bonusCredit{achievement: a})
	}
	return unlocked, nil
}

// touchStreak applies the daily streak transition once per record call.
func (e *Engine) touchStreak(ctx context.Context, tx pgx.Tx, userID uuid.UUID, up *domain.UserPoints) (StreakState, error) {
	state := StreakState{
		Current:      up.CurrentStreak,
		Longest:      up.LongestStreak,
		LastActivity: up.LastActivityDate,
	}
	next, transition := NextStreak(state, e.clock.Now())
	if transition == StreakUnchanged {
		return state, nil
	}

	if err := e.points.UpdateStreak(ctx, tx, userID, next.Current, next.Longest, *next.LastActivity); err != nil {
		return state, err
	}
	reset := transition == StreakReset
	if err := e.outbox.Insert(ctx, tx, domain.NewStreakExtendedEvent(userID, next.Current, next.Longest, reset)); err != nil {
		return state, err
	}
	return next, nil
}

// mirrorRanks pushes the committed total into the Redis sorted sets for the
// current period keys. Best effort: a cache failure never fails the record.
func (e *Engine) mirrorRanks(ctx context.Context, userID uuid.UUID, total int) {
	if e.cache == nil {
		return
	}
	now := e.clock.Now()
	for _, period := range domain.Periods() {
		if err := e.cache.SetScore(ctx, period, PeriodKey(period, now), userID, total); err != nil {
			e.logger.Warn("leaderboard cache update failed", "period", period, "error", err)
		}
	}
}
