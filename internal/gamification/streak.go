package gamification

import "time"

// StreakState is the streak portion of a user's points record.
type StreakState struct {
	Current      int
	Longest      int
	LastActivity *time.Time
}

// StreakTransition classifies what one NextStreak application did to the
// state. Consumers care about the reset case in particular: a streak of 1 is
// ambiguous without it.
type StreakTransition int

const (
	StreakUnchanged StreakTransition = iota
	StreakStarted
	StreakExtended
	StreakReset
)

// NextStreak applies one day of activity to a streak state. The transition is
// driven by lastActivity compared against now's calendar day:
//
//   - no prior activity: streak starts at 1
//   - prior day == today: unchanged (same-day activity never double-counts)
//   - prior day == yesterday: streak extends by 1
//   - anything older: streak resets to 1, longest keeps the prior peak
func NextStreak(s StreakState, now time.Time) (StreakState, StreakTransition) {
	today := DayOf(now)

	if s.LastActivity == nil {
		next := StreakState{Current: 1, Longest: max(s.Longest, 1), LastActivity: &today}
		return next, StreakStarted
	}

	last := DayOf(*s.LastActivity)
	switch {
	case last.Equal(today):
		return s, StreakUnchanged
	case last.Equal(today.AddDate(0, 0, -1)):
		current := s.Current + 1
		next := StreakState{Current: current, Longest: max(s.Longest, current), LastActivity: &today}
		return next, StreakExtended
	default:
		next := StreakState{Current: 1, Longest: max(s.Longest, 1), LastActivity: &today}
		return next, StreakReset
	}
}
