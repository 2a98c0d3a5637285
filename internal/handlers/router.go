package handlers

import (
	"net/http"

	customMiddleware "investmate-backend/internal/middleware"
	"investmate-backend/internal/metrics"
	"investmate-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig carries the handlers and settings the router mounts.
type RouterConfig struct {
	JWTSecret       string
	CORSOrigins     []string
	TrustProxy      bool
	LoginRatePerMin int
	Metrics         *metrics.Metrics

	Auth        *AuthHandler
	Profiles    *ProfileHandler
	Startups    *StartupHandler
	Uploads     *UploadHandler
	Connections *ConnectionHandler
	AI          *AIHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// RealIP rewrites RemoteAddr, which the login limiter keys on
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(customMiddleware.Metrics(cfg.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"investmate-backend"}`))
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	limiter := customMiddleware.NewRateLimiter(cfg.LoginRatePerMin)
	requireStartup := customMiddleware.RequireRole(cfg.JWTSecret, models.RoleStartup)
	requireInvestor := customMiddleware.RequireRole(cfg.JWTSecret, models.RoleInvestor)
	anyRole := customMiddleware.Authenticate(cfg.JWTSecret)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.With(limiter.Handler).Post("/auth/register", cfg.Auth.Register)
		r.With(limiter.Handler).Post("/auth/login", cfg.Auth.Login)
		r.Post("/auth/logout", cfg.Auth.Logout)
		r.Get("/startups", cfg.Startups.List)

		// Upload resolves its session from the multipart role field
		r.Post("/upload", cfg.Uploads.Upload)

		// Any signed-in user
		r.Group(func(r chi.Router) {
			r.Use(anyRole)
			r.Get("/auth/me", cfg.Auth.Me)
			r.Post("/auth/change-password", cfg.Auth.ChangePassword)
			r.Get("/connections", cfg.Connections.List)
		})

		// Startup only
		r.Group(func(r chi.Router) {
			r.Use(requireStartup)
			r.Patch("/startup/profile", cfg.Profiles.UpdateStartup)
			r.Patch("/connections/{id}", cfg.Connections.UpdateStatus)
			r.Post("/ai/coach/startup", cfg.AI.CoachStartup)
			r.Post("/ai/matchmaking/startup", cfg.AI.MatchStartup)
		})

		// Investor only
		r.Group(func(r chi.Router) {
			r.Use(requireInvestor)
			r.Patch("/investor/profile", cfg.Profiles.UpdateInvestor)
			r.Post("/connections", cfg.Connections.Create)
			r.Post("/ai/coach/investor", cfg.AI.CoachInvestor)
			r.Post("/ai/matchmaking/investor", cfg.AI.MatchInvestor)
		})
	})

	return r
}
