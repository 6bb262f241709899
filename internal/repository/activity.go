package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/learnloop/platform/internal/domain"
)

type activityRepo struct{}

// NewActivityRepository returns a pgx-backed ActivityRepository.
func NewActivityRepository() ActivityRepository {
	return &activityRepo{}
}

// Insert writes the audit row. When dedup is on, the partial unique index on
// (user_id, activity_type, entity_id) absorbs repeats and the caller sees
// recorded=false.
func (r *activityRepo) Insert(ctx context.Context, db DBTX, ev *domain.ActivityEvent, dedup bool) (bool, error) {
	query := `
		INSERT INTO activity_events (id, user_id, activity_type, entity_id, points_awarded)
		VALUES ($1, $2, $3, $4, $5)`
	if dedup {
		query += ` ON CONFLICT (user_id, activity_type, entity_id) WHERE entity_id <> '' DO NOTHING`
	}

	tag, err := db.Exec(ctx, query, ev.ID, ev.UserID, ev.ActivityType, ev.EntityID, ev.PointsAwarded)
	if err != nil {
		return false, fmt.Errorf("insert activity event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *activityRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.ActivityEvent, error) {
	rows, err := db.Query(ctx, `
		SELECT id, user_id, activity_type, entity_id, points_awarded, created_at
		FROM activity_events
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity events: %w", err)
	}
	defer rows.Close()

	var events []domain.ActivityEvent
	for rows.Next() {
		var ev domain.ActivityEvent
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.ActivityType, &ev.EntityID,
			&ev.PointsAwarded, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
