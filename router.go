package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/blogem/spotify-auth-proxy/config"
	"github.com/blogem/spotify-auth-proxy/controllers"
	appmiddleware "github.com/blogem/spotify-auth-proxy/middleware"
	"github.com/blogem/spotify-auth-proxy/models"
	"github.com/blogem/spotify-auth-proxy/repositories"
	"github.com/blogem/spotify-auth-proxy/response"
)

// setupRouter configures all routes. repos may be nil, which disables auditing;
// otherwise audit writes in flight are tracked in auditPending.
func setupRouter(cfg *config.Config, ctrl *controllers.Controllers, repos *repositories.Repositories, auditPending *sync.WaitGroup, logger *log.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(appmiddleware.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(appmiddleware.CORS(cfg.AllowedOrigins()))
	if repos != nil {
		r.Use(appmiddleware.AuditLogger(repos.Audit, auditPending, logger))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = response.JSON(w, http.StatusOK, models.HealthResponse{Status: "healthy", Service: "spotify-auth-proxy"})
	})

	r.Route("/api", func(r chi.Router) {
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			response.Error(w, http.StatusNotFound, response.CodeNotFound, "no such endpoint")
		})

		r.Post("/", ctrl.Proxy.Forward)
		r.Get("/login", ctrl.Auth.Login)
		r.Get("/callback", ctrl.Auth.Callback)
		r.With(appmiddleware.RequireRefreshToken).Get("/refresh_token", ctrl.Auth.RefreshToken)
		r.Get("/logout", ctrl.Auth.Logout)
	})

	// Everything else falls through to the front end build, when present
	if ctrl.SPA.Available() {
		r.NotFound(ctrl.SPA.ServeHTTP)
		logger.Info("serving front end", "dir", cfg.StaticDir)
	}

	return r
}
