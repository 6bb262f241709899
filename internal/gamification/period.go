package gamification

import (
	"fmt"
	"time"

	"github.com/learnloop/platform/internal/domain"
)

// AllTimeKey is the constant period key for the all-time leaderboard.
const AllTimeKey = "all-time"

// PeriodKey derives the current key for a leaderboard period at the given
// instant. Monthly keys look like "2025-06", weekly keys like "2025-W23".
func PeriodKey(period domain.Period, now time.Time) string {
	switch period {
	case domain.PeriodMonthly:
		return fmt.Sprintf("%d-%02d", now.Year(), int(now.Month()))
	case domain.PeriodWeekly:
		return fmt.Sprintf("%d-W%02d", now.Year(), weekOfYear(now))
	default:
		return AllTimeKey
	}
}

// weekOfYear numbers weeks from the start of the calendar year, offset by the
// weekday the year began on, so week 1 ends on the year's first Saturday.
// This is not ISO 8601: week 1 can be short, and a leap year starting on
// Saturday runs to W54. Key consumers must accept W01 through W54.
func weekOfYear(t time.Time) int {
	yearStart := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	offset := int(yearStart.Weekday())
	return (t.YearDay()+offset-1)/7 + 1
}
