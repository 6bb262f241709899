package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityType is a category of learning activity reported by the
// course/video/quiz/discussion modules.
type ActivityType string

const (
	ActivityVideoWatched     ActivityType = "video-watched"
	ActivityQuizPassed       ActivityType = "quiz-passed"
	ActivityCourseCompleted  ActivityType = "course-completed"
	ActivityDiscussionPosted ActivityType = "discussion-posted"
	ActivityReviewPosted     ActivityType = "review-posted"
)

// DefaultActivityPoints is awarded for activity types without an explicit entry.
const DefaultActivityPoints = 5

var activityPoints = map[ActivityType]int{
	ActivityVideoWatched:     5,
	ActivityQuizPassed:       20,
	ActivityCourseCompleted:  100,
	ActivityDiscussionPosted: 10,
	ActivityReviewPosted:     15,
}

// PointsForActivity returns the reward for an activity type.
// Unknown types degrade to DefaultActivityPoints rather than failing.
func PointsForActivity(t ActivityType) int {
	if pts, ok := activityPoints[t]; ok {
		return pts
	}
	return DefaultActivityPoints
}

// AchievementType is the counter an achievement tracks.
type AchievementType string

const (
	AchievementVideosWatched     AchievementType = "videos-watched"
	AchievementQuizzesPassed     AchievementType = "quizzes-passed"
	AchievementCoursesCompleted  AchievementType = "courses-completed"
	AchievementDiscussionsPosted AchievementType = "discussions-posted"
	AchievementCourseReviews     AchievementType = "course-reviews"
)

var activityAchievements = map[ActivityType]AchievementType{
	ActivityVideoWatched:     AchievementVideosWatched,
	ActivityQuizPassed:       AchievementQuizzesPassed,
	ActivityCourseCompleted:  AchievementCoursesCompleted,
	ActivityDiscussionPosted: AchievementDiscussionsPosted,
	ActivityReviewPosted:     AchievementCourseReviews,
}

// AchievementTypeFor maps an activity type to the achievement counter it
// advances. The second return is false for activity types with no mapping,
// which are silently ignored by the tracker.
func AchievementTypeFor(t ActivityType) (AchievementType, bool) {
	at, ok := activityAchievements[t]
	return at, ok
}

// PointsPerLevel is the flat point cost of each level.
const PointsPerLevel = 100

// LevelForPoints derives the current level from a cumulative point total.
func LevelForPoints(total int) int {
	return total/PointsPerLevel + 1
}

// PointsToNextLevel derives the remaining points until the next level.
func PointsToNextLevel(total int) int {
	return LevelForPoints(total)*PointsPerLevel - total
}

// UserPoints is a user's cumulative gamification state. Created lazily on
// first recorded activity; level fields are derived from TotalPoints.
type UserPoints struct {
	UserID           uuid.UUID  `json:"user_id"`
	TotalPoints      int        `json:"total_points"`
	CurrentLevel     int        `json:"current_level"`
	PointsToNext     int        `json:"points_to_next_level"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Achievement is an admin-authored catalog entry, immutable at runtime.
type Achievement struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Type        AchievementType `json:"type"`
	Requirement int             `json:"requirement"`
	Points      int             `json:"points"`
	Rarity      string          `json:"rarity"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
}

// UserAchievement tracks one user's progress toward one achievement.
// Progress is monotonic and freezes once IsCompleted flips to true.
type UserAchievement struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	AchievementID uuid.UUID  `json:"achievement_id"`
	Progress      int        `json:"progress"`
	IsCompleted   bool       `json:"is_completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	PointsEarned  int        `json:"points_earned"`
}

// AchievementStatus is an achievement joined with the user's progress row
// (zero progress if the row does not exist yet).
type AchievementStatus struct {
	Achievement
	Progress     int        `json:"progress"`
	IsCompleted  bool       `json:"is_completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	PointsEarned int        `json:"points_earned"`
}

// AchievementSummary aggregates a user's achievement standing.
type AchievementSummary struct {
	Completed      int     `json:"completed"`
	Total          int     `json:"total"`
	CompletionRate float64 `json:"completion_rate"`
	PointsEarned   int     `json:"points_earned"`
}

// Period is a leaderboard scoring window.
type Period string

const (
	PeriodAllTime Period = "all-time"
	PeriodMonthly Period = "monthly"
	PeriodWeekly  Period = "weekly"
)

// Periods lists every leaderboard window, in refresh order.
func Periods() []Period {
	return []Period{PeriodAllTime, PeriodMonthly, PeriodWeekly}
}

// ValidPeriod reports whether p names a known leaderboard window.
func ValidPeriod(p Period) bool {
	switch p {
	case PeriodAllTime, PeriodMonthly, PeriodWeekly:
		return true
	}
	return false
}

// LeaderboardEntry is one user's row in one (period, periodKey) snapshot.
// Rank is a dense 1-based position by descending points. Entries for past
// period keys are retained but never updated again.
type LeaderboardEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Period    Period    `json:"period"`
	PeriodKey string    `json:"period_key"`
	Points    int       `json:"points"`
	Rank      int       `json:"rank"`
	Username  string    `json:"username,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LeaderboardPage is one page of a ranked leaderboard.
type LeaderboardPage struct {
	Period    Period             `json:"period"`
	PeriodKey string             `json:"period_key"`
	Page      int                `json:"page"`
	Limit     int                `json:"limit"`
	Total     int                `json:"total"`
	Entries   []LeaderboardEntry `json:"entries"`
}

// MyRank is a user's own leaderboard standing. Ranked is false when the user
// has no entry in the current periodKey; Entry is nil in that case.
type MyRank struct {
	Ranked bool              `json:"ranked"`
	Entry  *LeaderboardEntry `json:"entry,omitempty"`
}

// ActivityEvent is the audit row written for every recorded activity.
type ActivityEvent struct {
	ID            uuid.UUID    `json:"id"`
	UserID        uuid.UUID    `json:"user_id"`
	ActivityType  ActivityType `json:"activity_type"`
	EntityID      string       `json:"entity_id"`
	PointsAwarded int          `json:"points_awarded"`
	CreatedAt     time.Time    `json:"created_at"`
}
