//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/learnloop/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminAchievements_CRUD(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.AdminToken("admin")

	// Create
	resp := env.AuthPOST("/admin/achievements", map[string]interface{}{
		"title":       "Marathon Learner",
		"description": "Watch 50 video lessons",
		"category":    "learning",
		"type":        "videos-watched",
		"requirement": 50,
		"points":      100,
		"rarity":      "rare",
	}, adminToken)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var created struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Active bool   `json:"active"`
	}
	testutil.DecodeJSON(t, resp, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Marathon Learner", created.Title)
	assert.True(t, created.Active)

	// List
	resp = env.AuthGET("/admin/achievements/", adminToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var catalog []struct {
		ID     string `json:"id"`
		Active bool   `json:"active"`
	}
	testutil.DecodeJSON(t, resp, &catalog)
	require.Len(t, catalog, 1)

	// Deactivate
	resp = env.AuthPATCH("/admin/achievements/"+created.ID+"/active", map[string]bool{
		"active": false,
	}, adminToken)
	testutil.AssertStatus(t, resp, http.StatusOK)

	resp = env.AuthGET("/admin/achievements/", adminToken)
	testutil.DecodeJSON(t, resp, &catalog)
	require.Len(t, catalog, 1)
	assert.False(t, catalog[0].Active)
}

func TestAdminAchievements_InactiveDoesNotAdvance(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.AdminToken("admin")
	id := env.SeedAchievement("Dormant", "videos-watched", 1, 10)

	resp := env.AuthPATCH("/admin/achievements/"+id.String()+"/active", map[string]bool{
		"active": false,
	}, adminToken)
	testutil.AssertStatus(t, resp, http.StatusOK)

	userID, token := env.SeedUser("watcher")
	result := env.RecordActivity(token, "video-watched", "")
	assert.Nil(t, result["unlocked"])
	testutil.AssertPoints(t, env, userID, 5, 1, 95)
}

func TestAdminAchievements_Validation(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.AdminToken("admin")

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing title", map[string]interface{}{"type": "videos-watched", "requirement": 5}},
		{"zero requirement", map[string]interface{}{"title": "Broken", "type": "videos-watched", "requirement": 0}},
		{"negative points", map[string]interface{}{"title": "Broken", "type": "videos-watched", "requirement": 5, "points": -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.AuthPOST("/admin/achievements", tt.body, adminToken)
			testutil.AssertStatus(t, resp, http.StatusBadRequest)
			testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
		})
	}
}

func TestAdminAchievements_AuthBoundaries(t *testing.T) {
	env := testutil.NewTestEnv(t)

	t.Run("no token", func(t *testing.T) {
		resp := env.GET("/admin/achievements/")
		testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	})

	t.Run("user token rejected", func(t *testing.T) {
		_, userToken := env.SeedUser("sneaky")
		resp := env.AuthGET("/admin/achievements/", userToken)
		testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	})

	t.Run("viewer cannot write", func(t *testing.T) {
		viewerToken := env.AdminToken("viewer")
		resp := env.AuthPOST("/admin/achievements", map[string]interface{}{
			"title": "Nope", "type": "videos-watched", "requirement": 1,
		}, viewerToken)
		testutil.AssertStatus(t, resp, http.StatusForbidden)
	})

	t.Run("admin token rejected on user routes", func(t *testing.T) {
		adminToken := env.AdminToken("admin")
		resp := env.AuthGET("/gamification/points", adminToken)
		testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	})
}
