package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/learnloop/platform/internal/domain"
)

type achievementRepo struct{}

// NewAchievementRepository returns a pgx-backed AchievementRepository.
func NewAchievementRepository() AchievementRepository {
	return &achievementRepo{}
}

func (r *achievementRepo) ListActiveByType(ctx context.Context, db DBTX, t domain.AchievementType) ([]domain.Achievement, error) {
	rows, err := db.Query(ctx, `
		SELECT id, title, description, category, type, requirement, points, rarity, active, created_at
		FROM achievements
		WHERE active = true AND type = $1
		ORDER BY requirement ASC`, t)
	if err != nil {
		return nil, fmt.Errorf("list achievements by type: %w", err)
	}
	defer rows.Close()

	var achievements []domain.Achievement
	for rows.Next() {
		var a domain.Achievement
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Category, &a.Type,
			&a.Requirement, &a.Points, &a.Rarity, &a.Active, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

func (r *achievementRepo) EnsureProgress(ctx context.Context, db DBTX, userID, achievementID uuid.UUID) error {
	_, err := db.Exec(ctx, `
		INSERT INTO user_achievements (id, user_id, achievement_id, progress, is_completed, points_earned)
		VALUES ($1, $2, $3, 0, false, 0)
		ON CONFLICT (user_id, achievement_id) DO NOTHING`,
		uuid.New(), userID, achievementID)
	if err != nil {
		return fmt.Errorf("ensure achievement progress: %w", err)
	}
	return nil
}

// IncrementProgress guards on is_completed so progress freezes after
// completion; the WHERE clause makes repeat advances no-ops.
func (r *achievementRepo) IncrementProgress(ctx context.Context, tx pgx.Tx, userID, achievementID uuid.UUID) (int, bool, error) {
	var progress int
	err := tx.QueryRow(ctx, `
		UPDATE user_achievements
		SET progress = progress + 1
		WHERE user_id = $1 AND achievement_id = $2 AND is_completed = false
		RETURNING progress`,
		userID, achievementID).Scan(&progress)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("increment achievement progress: %w", err)
	}
	return progress, true, nil
}

func (r *achievementRepo) MarkCompleted(ctx context.Context, tx pgx.Tx, userID, achievementID uuid.UUID, completedAt time.Time, pointsEarned int) error {
	_, err := tx.Exec(ctx, `
		UPDATE user_achievements
		SET is_completed = true, completed_at = $3, points_earned = $4
		WHERE user_id = $1 AND achievement_id = $2 AND is_completed = false`,
		userID, achievementID, completedAt, pointsEarned)
	if err != nil {
		return fmt.Errorf("mark achievement completed: %w", err)
	}
	return nil
}

func (r *achievementRepo) ListWithProgress(ctx context.Context, db DBTX, userID uuid.UUID) ([]domain.AchievementStatus, error) {
	rows, err := db.Query(ctx, `
		SELECT a.id, a.title, a.description, a.category, a.type, a.requirement,
		       a.points, a.rarity, a.active, a.created_at,
		       COALESCE(ua.progress, 0), COALESCE(ua.is_completed, false),
		       ua.completed_at, COALESCE(ua.points_earned, 0)
		FROM achievements a
		LEFT JOIN user_achievements ua ON ua.achievement_id = a.id AND ua.user_id = $1
		WHERE a.active = true
		ORDER BY a.category, a.requirement ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list achievements with progress: %w", err)
	}
	defer rows.Close()

	var statuses []domain.AchievementStatus
	for rows.Next() {
		var s domain.AchievementStatus
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.Category, &s.Type,
			&s.Requirement, &s.Points, &s.Rarity, &s.Active, &s.CreatedAt,
			&s.Progress, &s.IsCompleted, &s.CompletedAt, &s.PointsEarned); err != nil {
			return nil, fmt.Errorf("scan achievement status: %w", err)
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

func (r *achievementRepo) ListAll(ctx context.Context, db DBTX) ([]domain.Achievement, error) {
	rows, err := db.Query(ctx, `
		SELECT id, title, description, category, type, requirement, points, rarity, active, created_at
		FROM achievements
		ORDER BY category, requirement ASC`)
	if err != nil {
		return nil, fmt.Errorf("list all achievements: %w", err)
	}
	defer rows.Close()

	var achievements []domain.Achievement
	for rows.Next() {
		var a domain.Achievement
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Category, &a.Type,
			&a.Requirement, &a.Points, &a.Rarity, &a.Active, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

func (r *achievementRepo) Create(ctx context.Context, db DBTX, a *domain.Achievement) error {
	_, err := db.Exec(ctx, `
		INSERT INTO achievements (id, title, description, category, type, requirement, points, rarity, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.Title, a.Description, a.Category, a.Type,
		a.Requirement, a.Points, a.Rarity, a.Active, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert achievement: %w", err)
	}
	return nil
}

func (r *achievementRepo) SetActive(ctx context.Context, db DBTX, id uuid.UUID, active bool) error {
	tag, err := db.Exec(ctx, `UPDATE achievements SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set achievement active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("achievement", id.String())
	}
	return nil
}
