package gamification

import (
	"sort"

	"github.com/learnloop/platform/internal/domain"
)

// AssignRanks orders entries by descending points and rewrites Rank as the
// 1-based position. The sort is stable: ties keep their prior relative order,
// which for freshly fetched snapshots is insertion order. Entries are
// modified in place and returned in rank order.
func AssignRanks(entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
