//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/learnloop/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leaderboardPage struct {
	Period    string `json:"period"`
	PeriodKey string `json:"period_key"`
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	Total     int    `json:"total"`
	Entries   []struct {
		UserID   uuid.UUID `json:"user_id"`
		Points   int       `json:"points"`
		Rank     int       `json:"rank"`
		Username string    `json:"username"`
	} `json:"entries"`
}

func TestLeaderboard_RanksAcrossPeriods(t *testing.T) {
	env := testutil.NewTestEnv(t)

	_, tokenA := env.SeedUser("alice")
	userB, tokenB := env.SeedUser("bob")
	_, tokenC := env.SeedUser("carol")

	env.RecordActivity(tokenA, "course-completed", "") // 100
	env.RecordActivity(tokenB, "quiz-passed", "")      // 20
	env.RecordActivity(tokenC, "video-watched", "")    // 5

	for _, period := range []string{"all-time", "monthly", "weekly"} {
		t.Run(period, func(t *testing.T) {
			resp := env.AuthGET("/gamification/leaderboard/"+period, tokenA)
			testutil.AssertStatus(t, resp, http.StatusOK)

			var page leaderboardPage
			testutil.DecodeJSON(t, resp, &page)
			assert.Equal(t, period, page.Period)
			assert.Equal(t, 3, page.Total)
			require.Len(t, page.Entries, 3)

			assert.Equal(t, []int{100, 20, 5}, []int{
				page.Entries[0].Points, page.Entries[1].Points, page.Entries[2].Points,
			})
			for i, e := range page.Entries {
				assert.Equal(t, i+1, e.Rank)
			}
			if period == "all-time" {
				assert.Equal(t, "all-time", page.PeriodKey)
			} else {
				assert.NotEqual(t, "all-time", page.PeriodKey)
			}
			assert.Equal(t, userB, page.Entries[1].UserID)
		})
	}
}

func TestLeaderboard_TiesKeepEarlierEntrant(t *testing.T) {
	env := testutil.NewTestEnv(t)

	userA, tokenA := env.SeedUser("early")
	userB, tokenB := env.SeedUser("late")

	env.RecordActivity(tokenA, "quiz-passed", "")
	env.RecordActivity(tokenB, "quiz-passed", "")

	resp := env.AuthGET("/gamification/leaderboard/all-time", tokenA)
	var page leaderboardPage
	testutil.DecodeJSON(t, resp, &page)

	require.Len(t, page.Entries, 2)
	assert.Equal(t, userA, page.Entries[0].UserID)
	assert.Equal(t, 1, page.Entries[0].Rank)
	assert.Equal(t, userB, page.Entries[1].UserID)
	assert.Equal(t, 2, page.Entries[1].Rank)
}

func TestLeaderboard_Pagination(t *testing.T) {
	env := testutil.NewTestEnv(t)

	var lastToken string
	for i := 0; i < 5; i++ {
		_, token := env.SeedUser(fmt.Sprintf("user%d", i))
		env.RecordActivity(token, "video-watched", "")
		lastToken = token
	}

	resp := env.AuthGET("/gamification/leaderboard/all-time?page=2&limit=2", lastToken)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var page leaderboardPage
	testutil.DecodeJSON(t, resp, &page)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, 3, page.Entries[0].Rank)
	assert.Equal(t, 4, page.Entries[1].Rank)
}

func TestLeaderboard_UnknownPeriodRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, token := env.SeedUser("curious")

	resp := env.AuthGET("/gamification/leaderboard/daily", token)
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestMyRank(t *testing.T) {
	env := testutil.NewTestEnv(t)

	userA, tokenA := env.SeedUser("ranked")
	_, tokenB := env.SeedUser("busy")

	env.RecordActivity(tokenB, "course-completed", "")
	env.RecordActivity(tokenA, "quiz-passed", "")

	resp := env.AuthGET("/gamification/leaderboard/all-time/me", tokenA)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var rank struct {
		Ranked bool `json:"ranked"`
		Entry  *struct {
			UserID uuid.UUID `json:"user_id"`
			Rank   int       `json:"rank"`
			Points int       `json:"points"`
		} `json:"entry"`
	}
	testutil.DecodeJSON(t, resp, &rank)
	assert.True(t, rank.Ranked)
	require.NotNil(t, rank.Entry)
	assert.Equal(t, userA, rank.Entry.UserID)
	assert.Equal(t, 2, rank.Entry.Rank)
	assert.Equal(t, 20, rank.Entry.Points)
}

func TestMyRank_UnrankedUser(t *testing.T) {
	env := testutil.NewTestEnv(t)

	_, tokenA := env.SeedUser("lurker")
	_, tokenB := env.SeedUser("active")
	env.RecordActivity(tokenB, "video-watched", "")

	resp := env.AuthGET("/gamification/leaderboard/weekly/me", tokenA)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var rank struct {
		Ranked bool        `json:"ranked"`
		Entry  interface{} `json:"entry"`
	}
	testutil.DecodeJSON(t, resp, &rank)
	assert.False(t, rank.Ranked)
	assert.Nil(t, rank.Entry)
}
