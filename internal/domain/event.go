package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventActivityRecorded    EventType = "gamification.activity.recorded"
	EventPointsAwarded       EventType = "gamification.points.awarded"
	EventLevelReached        EventType = "gamification.level.reached"
	EventAchievementUnlocked EventType = "gamification.achievement.unlocked"
	EventStreakExtended      EventType = "gamification.streak.extended"
	EventLeaderboardUpdated  EventType = "gamification.leaderboard.updated"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateUser        AggregateType = "user"
	AggregateLeaderboard AggregateType = "leaderboard"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// OutboxRow is an outbox draft together with its sequence ID, as read back
// by the poller.
type OutboxRow struct {
	SeqID int64
	OutboxDraft
}
