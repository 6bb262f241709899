package gamification

import (
	"testing"
	"time"

	"github.com/learnloop/platform/internal/domain"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestPeriodKey_AllTime(t *testing.T) {
	assert.Equal(t, "all-time", PeriodKey(domain.PeriodAllTime, date(2025, time.June, 15)))
	// The all-time key never varies with the clock.
	assert.Equal(t, "all-time", PeriodKey(domain.PeriodAllTime, date(1999, time.January, 1)))
}

func TestPeriodKey_Monthly(t *testing.T) {
	tests := []struct {
		now  time.Time
		want string
	}{
		{date(2025, time.June, 15), "2025-06"},
		{date(2025, time.January, 1), "2025-01"},
		{date(2025, time.December, 31), "2025-12"},
		{date(2024, time.October, 7), "2024-10"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PeriodKey(domain.PeriodMonthly, tt.now), "now=%s", tt.now)
	}
}

func TestPeriodKey_Weekly(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		// 2025 begins on a Wednesday (offset 3), so Jan 1-4 fall in week 1
		// and Sunday Jan 5 starts week 2.
		{"first day of 2025", date(2025, time.January, 1), "2025-W01"},
		{"saturday closing week 1", date(2025, time.January, 4), "2025-W01"},
		{"sunday opening week 2", date(2025, time.January, 5), "2025-W02"},
		{"mid june 2025", date(2025, time.June, 11), "2025-W24"},
		// 2023 begins on a Sunday (offset 0): Jan 7 closes week 1.
		{"first week of 2023", date(2023, time.January, 7), "2023-W01"},
		{"second week of 2023", date(2023, time.January, 8), "2023-W02"},
		{"end of 2023", date(2023, time.December, 31), "2023-W53"},
		// 2028 is a leap year starting on Saturday, the one shape that
		// pushes the final day past W53.
		{"end of 2028 leap year", date(2028, time.December, 31), "2028-W54"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodKey(domain.PeriodWeekly, tt.now))
		})
	}
}

func TestPeriodKey_SameDaySameKeys(t *testing.T) {
	morning := time.Date(2025, time.June, 11, 0, 1, 0, 0, time.UTC)
	evening := time.Date(2025, time.June, 11, 23, 59, 0, 0, time.UTC)

	for _, p := range domain.Periods() {
		assert.Equal(t, PeriodKey(p, morning), PeriodKey(p, evening))
	}
}

func TestDayOf(t *testing.T) {
	ts := time.Date(2025, time.June, 11, 17, 45, 12, 999, time.UTC)
	day := DayOf(ts)
	assert.Equal(t, time.Date(2025, time.June, 11, 0, 0, 0, 0, time.UTC), day)
	assert.Equal(t, day, DayOf(day))
}
