package app

import (
	"log/slog"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/learnloop/platform/internal/auth"
	"github.com/learnloop/platform/internal/gamification"
	"github.com/learnloop/platform/internal/guard"
	"github.com/learnloop/platform/internal/handler"
	adminhandler "github.com/learnloop/platform/internal/handler/admin"
	"github.com/learnloop/platform/internal/repository"
	"github.com/redis/go-redis/v9"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool   *pgxpool.Pool
	Redis  *redis.Client // nil when Redis is disabled
	JWTMgr *auth.JWTManager
	Logger *slog.Logger

	CORSAllowedOrigins string
	ActivityRateLimit  int
	DedupEnabled       bool
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Repositories
	pointsRepo := repository.NewPointsRepository()
	achievementRepo := repository.NewAchievementRepository()
	leaderboardRepo := repository.NewLeaderboardRepository()
	activityRepo := repository.NewActivityRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Gamification engine
	// The interface stays a true nil when Redis is disabled; a typed nil
	// *RankCache would slip past the engine's nil checks.
	var cache gamification.RankMirror
	if deps.Redis != nil {
		cache = gamification.NewRankCache(deps.Redis)
	}
	engine := gamification.NewEngine(
		pool, pointsRepo, achievementRepo, leaderboardRepo, activityRepo, outboxRepo,
		cache, gamification.SystemClock(), logger, deps.DedupEnabled,
	)

	// Guards
	limiter := guard.NewRateLimiter(deps.ActivityRateLimit, time.Minute)

	// Handlers
	gamificationHandler := handler.NewGamificationHandler(engine, limiter)
	achievementAdmin := adminhandler.NewAchievementAdminHandler(pool, achievementRepo)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS(splitOrigins(deps.CORSAllowedOrigins)))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// User-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateUser(jwtMgr))

		r.Route("/gamification", func(r chi.Router) {
			r.Post("/activities", gamificationHandler.RecordActivity)
			r.Get("/activities", gamificationHandler.GetRecentActivity)
			r.Get("/points", gamificationHandler.GetPoints)
			r.Get("/achievements", gamificationHandler.GetAchievements)
			r.Get("/streak", gamificationHandler.GetStreak)
			r.Get("/leaderboard/{period}", gamificationHandler.GetLeaderboard)
			r.Get("/leaderboard/{period}/me", gamificationHandler.GetMyRank)
		})
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(jwtMgr))

		r.Route("/achievements", func(r chi.Router) {
			r.Get("/", achievementAdmin.ListAchievements)
			r.With(auth.RequireRole(auth.WriteRoles()...)).Post("/", achievementAdmin.CreateAchievement)
			r.With(auth.RequireRole(auth.WriteRoles()...)).Patch("/{id}/active", achievementAdmin.SetAchievementActive)
		})
	})

	return r
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
