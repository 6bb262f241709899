package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NewActivityRecordedEvent creates the audit event for a recorded activity.
func NewActivityRecordedEvent(ev *ActivityEvent) OutboxDraft {
	payload, _ := json.Marshal(ev)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateUser,
		AggregateID:   ev.UserID.String(),
		EventType:     EventActivityRecorded,
		PartitionKey:  ev.UserID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewPointsAwardedEvent creates the event for a point credit, carrying the
// post-credit totals so consumers need no read-back.
func NewPointsAwardedEvent(userID uuid.UUID, delta int, reason string, up *UserPoints) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"user_id":       userID.String(),
		"delta":         delta,
		"reason":        reason,
		"total_points":  up.TotalPoints,
		"current_level": up.CurrentLevel,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateUser,
		AggregateID:   userID.String(),
		EventType:     EventPointsAwarded,
		PartitionKey:  userID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewLevelReachedEvent creates the event emitted when a point credit crosses
// a level boundary.
func NewLevelReachedEvent(userID uuid.UUID, level int) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"user_id": userID.String(),
		"level":   level,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateUser,
		AggregateID:   userID.String(),
		EventType:     EventLevelReached,
		PartitionKey:  userID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewAchievementUnlockedEvent creates the event for a completed achievement.
func NewAchievementUnlockedEvent(userID uuid.UUID, a *Achievement) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"user_id":        userID.String(),
		"achievement_id": a.ID.String(),
		"title":          a.Title,
		"rarity":         a.Rarity,
		"points":         a.Points,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateUser,
		AggregateID:   userID.String(),
		EventType:     EventAchievementUnlocked,
		PartitionKey:  userID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewStreakExtendedEvent creates the event for a streak increment or reset.
// The reset flag lets consumers tell "back to 1 after a gap" apart from a
// genuine day-one streak.
func NewStreakExtendedEvent(userID uuid.UUID, current, longest int, reset bool) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"user_id":        userID.String(),
		"current_streak": current,
		"longest_streak": longest,
		"reset":          reset,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateUser,
		AggregateID:   userID.String(),
		EventType:     EventStreakExtended,
		PartitionKey:  userID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewLeaderboardUpdatedEvent creates the event for a re-ranked period snapshot.
func NewLeaderboardUpdatedEvent(period Period, periodKey string, userID uuid.UUID, points int) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"period":     string(period),
		"period_key": periodKey,
		"user_id":    userID.String(),
		"points":     points,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateLeaderboard,
		AggregateID:   string(period) + ":" + periodKey,
		EventType:     EventLeaderboardUpdated,
		PartitionKey:  string(period) + ":" + periodKey,
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
