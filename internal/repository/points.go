package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/learnloop/platform/internal/domain"
)

type pointsRepo struct{}

// NewPointsRepository returns a pgx-backed PointsRepository.
func NewPointsRepository() PointsRepository {
	return &pointsRepo{}
}

func (r *pointsRepo) Find(ctx context.Context, db DBTX, userID uuid.UUID) (*domain.UserPoints, error) {
	row := db.QueryRow(ctx, `
		SELECT user_id, total_points, current_level, points_to_next_level,
		       current_streak, longest_streak, last_activity_date, created_at, updated_at
		FROM user_points WHERE user_id = $1`, userID)
	return scanUserPoints(row)
}

func (r *pointsRepo) Ensure(ctx context.Context, db DBTX, userID uuid.UUID) error {
	_, err := db.Exec(ctx, `
		INSERT INTO user_points (user_id, total_points, current_level, points_to_next_level,
		                         current_streak, longest_streak)
		VALUES ($1, 0, 1, 100, 0, 0)
		ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("ensure user points: %w", err)
	}
	return nil
}

// AddPoints recomputes the derived level columns server-side so the whole
// credit is a single atomic statement.
func (r *pointsRepo) AddPoints(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta int) (*domain.UserPoints, error) {
	row := tx.QueryRow(ctx, `
		UPDATE user_points SET
			total_points = total_points + $2,
			current_level = (total_points + $2) / 100 + 1,
			points_to_next_level = ((total_points + $2) / 100 + 1) * 100 - (total_points + $2),
			updated_at = now()
		WHERE user_id = $1
		RETURNING user_id, total_points, current_level, points_to_next_level,
		          current_streak, longest_streak, last_activity_date, created_at, updated_at`,
		userID, delta)
	up, err := scanUserPoints(row)
	if err != nil {
		return nil, err
	}
	if up == nil {
		return nil, fmt.Errorf("add points: user %s has no points record", userID)
	}
	return up, nil
}

func (r *pointsRepo) UpdateStreak(ctx context.Context, db DBTX, userID uuid.UUID, current, longest int, lastActivity time.Time) error {
	_, err := db.Exec(ctx, `
		UPDATE user_points SET
			current_streak = $2,
			longest_streak = $3,
			last_activity_date = $4,
			updated_at = now()
		WHERE user_id = $1`,
		userID, current, longest, lastActivity)
	if err != nil {
		return fmt.Errorf("update streak: %w", err)
	}
	return nil
}

func scanUserPoints(row pgx.Row) (*domain.UserPoints, error) {
	var up domain.UserPoints
	err := row.Scan(&up.UserID, &up.TotalPoints, &up.CurrentLevel, &up.PointsToNext,
		&up.CurrentStreak, &up.LongestStreak, &up.LastActivityDate, &up.CreatedAt, &up.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user points: %w", err)
	}
	return &up, nil
}
