package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/learnloop/platform/internal/domain"
)

type leaderboardRepo struct{}

// NewLeaderboardRepository returns a pgx-backed LeaderboardRepository.
func NewLeaderboardRepository() LeaderboardRepository {
	return &leaderboardRepo{}
}

func (r *leaderboardRepo) Upsert(ctx context.Context, tx pgx.Tx, userID uuid.UUID, period domain.Period, periodKey string, points int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO leaderboard_entries (id, user_id, period, period_key, points, rank)
		VALUES ($1, $2, $3, $4, $5, 0)
		ON CONFLICT (user_id, period, period_key)
		DO UPDATE SET points = EXCLUDED.points, updated_at = now()`,
		uuid.New(), userID, period, periodKey, points)
	if err != nil {
		return fmt.Errorf("upsert leaderboard entry: %w", err)
	}
	return nil
}

// ListForUpdate orders by created_at then id so re-ranking sees a stable
// insertion order for ties. The row locks scope the snapshot swap to this
// one (period, periodKey).
func (r *leaderboardRepo) ListForUpdate(ctx context.Context, tx pgx.Tx, period domain.Period, periodKey string) ([]domain.LeaderboardEntry, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, user_id, period, period_key, points, rank, created_at, updated_at
		FROM leaderboard_entries
		WHERE period = $1 AND period_key = $2
		ORDER BY created_at ASC, id ASC
		FOR UPDATE`, period, periodKey)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard for update: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Period, &e.PeriodKey,
			&e.Points, &e.Rank, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *leaderboardRepo) UpdateRanks(ctx context.Context, tx pgx.Tx, entries []domain.LeaderboardEntry) error {
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`UPDATE leaderboard_entries SET rank = $2 WHERE id = $1`, e.ID, e.Rank)
	}
	br := tx.SendBatch(ctx, batch)
	defer br.Close()

	for range entries {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("update rank: %w", err)
		}
	}
	return nil
}

func (r *leaderboardRepo) ListPage(ctx context.Context, db DBTX, period domain.Period, periodKey string, limit, offset int) ([]domain.LeaderboardEntry, error) {
	rows, err := db.Query(ctx, `
		SELECT e.id, e.user_id, e.period, e.period_key, e.points, e.rank,
		       COALESCE(u.username, ''), u.avatar_url, e.created_at, e.updated_at
		FROM leaderboard_entries e
		LEFT JOIN users u ON u.id = e.user_id
		WHERE e.period = $1 AND e.period_key = $2
		ORDER BY e.rank ASC
		LIMIT $3 OFFSET $4`, period, periodKey, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard page: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Period, &e.PeriodKey, &e.Points, &e.Rank,
			&e.Username, &e.AvatarURL, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *leaderboardRepo) Count(ctx context.Context, db DBTX, period domain.Period, periodKey string) (int, error) {
	var count int
	err := db.QueryRow(ctx, `
		SELECT COUNT(*) FROM leaderboard_entries
		WHERE period = $1 AND period_key = $2`, period, periodKey).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count leaderboard entries: %w", err)
	}
	return count, nil
}

func (r *leaderboardRepo) FindEntry(ctx context.Context, db DBTX, userID uuid.UUID, period domain.Period, periodKey string) (*domain.LeaderboardEntry, error) {
	row := db.QueryRow(ctx, `
		SELECT e.id, e.user_id, e.period, e.period_key, e.points, e.rank,
		       COALESCE(u.username, ''), u.avatar_url, e.created_at, e.updated_at
		FROM leaderboard_entries e
		LEFT JOIN users u ON u.id = e.user_id
		WHERE e.user_id = $1 AND e.period = $2 AND e.period_key = $3`,
		userID, period, periodKey)

	var e domain.LeaderboardEntry
	err := row.Scan(&e.ID, &e.UserID, &e.Period, &e.PeriodKey, &e.Points, &e.Rank,
		&e.Username, &e.AvatarURL, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find leaderboard entry: %w", err)
	}
	return &e, nil
}
