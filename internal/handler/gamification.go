package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/learnloop/platform/internal/auth"
	"github.com/learnloop/platform/internal/domain"
	"github.com/learnloop/platform/internal/gamification"
	"github.com/learnloop/platform/internal/guard"
)

// GamificationHandler handles activity recording and progress read endpoints.
type GamificationHandler struct {
	engine  *gamification.Engine
	limiter *guard.RateLimiter
}

// NewGamificationHandler creates a new GamificationHandler.
func NewGamificationHandler(engine *gamification.Engine, limiter *guard.RateLimiter) *GamificationHandler {
	return &GamificationHandler{engine: engine, limiter: limiter}
}

type recordActivityRequest struct {
	ActivityType string `json:"activity_type"`
	EntityID     string `json:"entity_id"`
}

// RecordActivity handles POST /gamification/activities.
func (h *GamificationHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	if res := h.limiter.Check(r.Context(), "activity:"+userID.String()); !res.Allowed {
		RespondError(w, domain.ErrRateLimited(res.Reason))
		return
	}

	var input recordActivityRequest
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	input.ActivityType = strings.TrimSpace(input.ActivityType)
	if input.ActivityType == "" {
		RespondError(w, domain.ErrValidation("activity_type is required"))
		return
	}

	result, err := h.engine.RecordActivity(r.Context(), userID, domain.ActivityType(input.ActivityType), input.EntityID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, result)
}

// GetPoints handles GET /gamification/points.
func (h *GamificationHandler) GetPoints(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	points, err := h.engine.GetPoints(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, points)
}

// GetAchievements handles GET /gamification/achievements.
func (h *GamificationHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	report, err := h.engine.GetAchievements(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, report)
}

// GetStreak handles GET /gamification/streak.
func (h *GamificationHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	streak, err := h.engine.GetStreak(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, streak)
}

// GetLeaderboard handles GET /gamification/leaderboard/{period}.
func (h *GamificationHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	period := domain.Period(chi.URLParam(r, "period"))
	if !domain.ValidPeriod(period) {
		RespondError(w, domain.ErrValidation("unknown leaderboard period"))
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 0)

	board, err := h.engine.GetLeaderboard(r.Context(), period, page, limit)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, board)
}

// GetMyRank handles GET /gamification/leaderboard/{period}/me.
func (h *GamificationHandler) GetMyRank(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	period := domain.Period(chi.URLParam(r, "period"))
	if !domain.ValidPeriod(period) {
		RespondError(w, domain.ErrValidation("unknown leaderboard period"))
		return
	}

	rank, err := h.engine.GetMyRank(r.Context(), userID, period)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, rank)
}

// GetRecentActivity handles GET /gamification/activities.
func (h *GamificationHandler) GetRecentActivity(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	limit := queryInt(r, "limit", 0)

	events, err := h.engine.GetRecentActivity(r.Context(), userID, limit)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, events)
}

// userIDFromContext resolves the authenticated user's UUID from the JWT subject.
func userIDFromContext(r *http.Request) (uuid.UUID, error) {
	sub := auth.SubjectFromContext(r.Context())
	if sub == "" {
		return uuid.Nil, domain.ErrUnauthorized("no subject in context")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized("invalid subject")
	}
	return id, nil
}

// queryInt parses an integer query parameter, falling back on def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
