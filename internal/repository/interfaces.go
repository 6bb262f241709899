package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/learnloop/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PointsRepository provides access to user_points.
type PointsRepository interface {
	// Find returns a user's points record, or nil if none exists yet.
	Find(ctx context.Context, db DBTX, userID uuid.UUID) (*domain.UserPoints, error)

	// Ensure lazily creates a zeroed level-1 record. Safe to call repeatedly.
	Ensure(ctx context.Context, db DBTX, userID uuid.UUID) error

	// AddPoints credits delta using server-side arithmetic and recomputes the
	// derived level columns in the same statement. Returns the updated record.
	AddPoints(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta int) (*domain.UserPoints, error)

	// UpdateStreak persists a streak transition.
	UpdateStreak(ctx context.Context, db DBTX, userID uuid.UUID, current, longest int, lastActivity time.Time) error
}

// AchievementRepository provides access to achievements and user_achievements.
type AchievementRepository interface {
	// ListActiveByType returns active catalog entries tracking the given type.
	ListActiveByType(ctx context.Context, db DBTX, t domain.AchievementType) ([]domain.Achievement, error)

	// EnsureProgress lazily creates the per-user progress row.
	EnsureProgress(ctx context.Context, db DBTX, userID, achievementID uuid.UUID) error

	// IncrementProgress advances progress by 1 unless the achievement is
	// already completed. Returns the new progress and whether a row changed.
	IncrementProgress(ctx context.Context, tx pgx.Tx, userID, achievementID uuid.UUID) (int, bool, error)

	// MarkCompleted stamps completion exactly once and freezes progress.
	MarkCompleted(ctx context.Context, tx pgx.Tx, userID, achievementID uuid.UUID, completedAt time.Time, pointsEarned int) error

	// ListWithProgress returns every achievement joined with the user's
	// progress (zeroes for untouched rows), active first.
	ListWithProgress(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.AchievementStatus, error)

	// ListAll returns the full catalog for admin screens.
	ListAll(ctx context.Context, db DBTX) ([]domain.Achievement, error)

	// Create inserts a catalog entry.
	Create(ctx context.Context, db DBTX, a *domain.Achievement) error

	// SetActive toggles a catalog entry.
	SetActive(ctx context.Context, db DBTX, id uuid.UUID, active bool) error
}

// LeaderboardRepository provides access to leaderboard_entries.
type LeaderboardRepository interface {
	// Upsert writes the user's entry for (period, periodKey) with the new
	// point total, creating it on first touch within the period.
	Upsert(ctx context.Context, tx pgx.Tx, userID uuid.UUID, period domain.Period, periodKey string, points int) error

	// ListForUpdate fetches every entry in one (period, periodKey) snapshot
	// in insertion order, locked for the enclosing transaction.
	ListForUpdate(ctx context.Context, tx pgx.Tx, period domain.Period, periodKey string) ([]domain.LeaderboardEntry, error)

	// UpdateRanks batch-writes the rank column for a re-ranked snapshot.
	UpdateRanks(ctx context.Context, tx pgx.Tx, entries []domain.LeaderboardEntry) error

	// ListPage returns one rank-ascending page with user display fields.
	ListPage(ctx context.Context, db DBTX, period domain.Period, periodKey string, limit, offset int) ([]domain.LeaderboardEntry, error)

	// Count returns the number of entries in one (period, periodKey).
	Count(ctx context.Context, db DBTX, period domain.Period, periodKey string) (int, error)

	// FindEntry returns the user's entry in one (period, periodKey), or nil.
	FindEntry(ctx context.Context, db DBTX, userID uuid.UUID, period domain.Period, periodKey string) (*domain.LeaderboardEntry, error)
}

// ActivityRepository provides access to the activity_events audit log.
type ActivityRepository interface {
	// Insert writes an audit row. With dedup enabled the insert is
	// conflict-guarded on (user, activity, entity); the bool reports whether
	// a row was actually written.
	Insert(ctx context.Context, db DBTX, ev *domain.ActivityEvent, dedup bool) (bool, error)

	// ListByUser returns a user's recent activity, newest first.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.ActivityEvent, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the
	// state change it describes).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns pending events for the poller, oldest first.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxRow, error)

	// MarkPublished removes published events.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}
