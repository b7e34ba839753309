package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/teamboard/internal/api/handler"
	"github.com/mcoot/teamboard/internal/api/middleware"
	"github.com/mcoot/teamboard/internal/api/sse"
	"github.com/mcoot/teamboard/internal/broadcast"
	"github.com/mcoot/teamboard/internal/dependencies/clock"
	sharedmw "github.com/mcoot/teamboard/internal/middleware"
	"github.com/mcoot/teamboard/internal/services/auth"
	"github.com/mcoot/teamboard/internal/services/scoreboard"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger       *slog.Logger
	Clock        clock.Clock
	AuthService  *auth.Service
	Scoreboard   *scoreboard.Controller
	Coordinator  *broadcast.Coordinator
	SSEKeepalive time.Duration
}

// NewRouter creates a new API router with all routes configured.
// Reads and the event stream need no credential. Mutations are rejected before the body is read
// unless the caller is an admin.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	teamHandler := handler.NewTeamHandler(cfg.Scoreboard)
	challengeHandler := handler.NewChallengeHandler(cfg.Scoreboard)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.Scoreboard)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	healthHandler := handler.NewHealthHandler(cfg.Clock)
	eventsHandler := sse.NewHandler(cfg.Coordinator, cfg.SSEKeepalive, cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(sharedmw.RequestID)
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.Credential)

	admin := middleware.RequireAdmin(cfg.Scoreboard)

	// Team routes
	api.HandleFunc("/teams", teamHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/teams", admin(teamHandler.Create)).Methods(http.MethodPost)
	api.HandleFunc("/teams/{id}", teamHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/teams/{id}", admin(teamHandler.Update)).Methods(http.MethodPut)
	api.HandleFunc("/teams/{id}", admin(teamHandler.Delete)).Methods(http.MethodDelete)
	api.HandleFunc("/teams/{id}/points", admin(teamHandler.UpdatePoints)).Methods(http.MethodPatch)

	// Challenge routes
	api.HandleFunc("/challenges", challengeHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/challenges", admin(challengeHandler.Create)).Methods(http.MethodPost)
	api.HandleFunc("/challenges/{id}", challengeHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/challenges/{id}", admin(challengeHandler.Update)).Methods(http.MethodPut)
	api.HandleFunc("/challenges/{id}", admin(challengeHandler.Delete)).Methods(http.MethodDelete)

	api.HandleFunc("/leaderboard", leaderboardHandler.Get).Methods(http.MethodGet)

	// Account routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/verify", authHandler.Verify).Methods(http.MethodGet)

	// Live updates
	api.Handle("/events", eventsHandler).Methods(http.MethodGet)

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	return r
}
