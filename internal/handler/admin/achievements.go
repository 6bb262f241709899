package admin

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnloop/platform/internal/domain"
	"github.com/learnloop/platform/internal/handler"
	"github.com/learnloop/platform/internal/repository"
)

// AchievementAdminHandler manages the achievement catalog.
type AchievementAdminHandler struct {
	pool         *pgxpool.Pool
	achievements repository.AchievementRepository
}

// NewAchievementAdminHandler creates a new AchievementAdminHandler.
func NewAchievementAdminHandler(pool *pgxpool.Pool, achievements repository.AchievementRepository) *AchievementAdminHandler {
	return &AchievementAdminHandler{pool: pool, achievements: achievements}
}

// ListAchievements handles GET /admin/achievements.
func (h *AchievementAdminHandler) ListAchievements(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.achievements.ListAll(r.Context(), h.pool)
	if err != nil {
		handler.RespondError(w, domain.ErrInternal("list achievements", err))
		return
	}

	handler.RespondJSON(w, http.StatusOK, catalog)
}

// CreateAchievement handles POST /admin/achievements.
func (h *AchievementAdminHandler) CreateAchievement(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Type        string `json:"type"`
		Requirement int    `json:"requirement"`
		Points      int    `json:"points"`
		Rarity      string `json:"rarity"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		handler.RespondError(w, domain.ErrValidation("title is required"))
		return
	}
	if input.Requirement < 1 {
		handler.RespondError(w, domain.ErrValidation("requirement must be at least 1"))
		return
	}
	if input.Points < 0 {
		handler.RespondError(w, domain.ErrValidation("points must not be negative"))
		return
	}

	a := &domain.Achievement{
		ID:          uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Type:        domain.AchievementType(input.Type),
		Requirement: input.Requirement,
		Points:      input.Points,
		Rarity:      input.Rarity,
		Active:      true,
		CreatedAt:   time.Now(),
	}
	if err := h.achievements.Create(r.Context(), h.pool, a); err != nil {
		handler.RespondError(w, domain.ErrInternal("create achievement", err))
		return
	}

	handler.RespondJSON(w, http.StatusCreated, a)
}

// SetAchievementActive handles PATCH /admin/achievements/{id}/active.
func (h *AchievementAdminHandler) SetAchievementActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid achievement id"))
		return
	}

	var input struct {
		Active bool `json:"active"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	if err := h.achievements.SetActive(r.Context(), h.pool, id, input.Active); err != nil {
		handler.RespondError(w, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]bool{"active": input.Active})
}
