package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Rrens/health-insights/internal/api/handler"
	customMiddleware "github.com/Rrens/health-insights/internal/api/middleware"
	"github.com/Rrens/health-insights/internal/config"
	"github.com/Rrens/health-insights/internal/engine"
	"github.com/Rrens/health-insights/internal/report"
	"github.com/Rrens/health-insights/internal/service"
)

// Services bundles what the HTTP layer serves
type Services struct {
	Auth          *service.AuthService
	Conversations *service.ConversationService
	Analyses      *service.AnalysisService
	Archive       *service.ArchiveService
	Reports       *report.Loader
	Engine        *engine.Router
	// Ready lists the dependencies probed by /ready
	Ready map[string]handler.Pinger
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, svc Services) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.Server.MiddlewareTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))
	}

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handler.NewAuthHandler(svc.Auth)
	sessionHandler := handler.NewSessionHandler(svc.Conversations)
	reportHandler := handler.NewReportHandler(svc.Reports)
	analysisHandler := handler.NewAnalysisHandler(svc.Analyses, svc.Archive)

	authMiddleware := customMiddleware.NewAuthMiddleware(svc.Auth)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(svc.Ready))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.SignUp)
			r.Post("/signin", authHandler.SignIn)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/auth/signout", authHandler.SignOut)
			r.Get("/auth/me", authHandler.Me)
			r.Patch("/auth/me", authHandler.UpdateMe)

			r.Get("/providers", handler.ListProviders(svc.Engine))
			r.Get("/ratelimit", analysisHandler.RateLimit)

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", sessionHandler.List)
				r.Post("/", sessionHandler.Create)

				r.Route("/{sessionID}", func(r chi.Router) {
					r.Post("/select", sessionHandler.Select)
					r.Get("/messages", sessionHandler.Messages)
					r.Delete("/", sessionHandler.Delete)
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/sample", reportHandler.Sample)
				r.Post("/upload", reportHandler.Upload)
			})

			r.Route("/analyses", func(r chi.Router) {
				r.Get("/", analysisHandler.History)
				r.Post("/", analysisHandler.Submit)
				r.Get("/export", analysisHandler.Export)
				r.Post("/archive", analysisHandler.Archive)
				r.Get("/archives", analysisHandler.Archives)
				r.Get("/archives/{archiveID}", analysisHandler.LoadArchive)
			})
		})
	})

	return r
}
