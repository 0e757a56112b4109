package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"samparkdash/cmd"
	"samparkdash/internal/config"
	"samparkdash/internal/session"
)

// NewRouter builds the HTTP API around h
func NewRouter(h *APIHandler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", SessionHeader},
		ExposedHeaders: []string{"Content-Disposition"},
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/otp", h.RequestOTP)
		r.Post("/auth/verify", h.VerifyOTP)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)

			r.Post("/auth/logout", h.Logout)
			r.Get("/session", h.GetSession)

			r.Get("/state/summary", h.StateSummary)
			r.Get("/state/{table}", h.StateTable)
			r.Get("/state/{table}/export.csv", h.StateExport)
			r.Get("/district/{districtID}/{table}", h.DistrictTable)
			r.Get("/district/{districtID}/{table}/export.csv", h.DistrictExport)
			r.Get("/block/{blockID}/{table}", h.BlockTable)
			r.Get("/block/{blockID}/{table}/export.csv", h.BlockExport)
		})
	})

	return r
}

// StartServer initializes and starts the HTTP server
func StartServer(cfg *config.Config, src cmd.Source, logger *slog.Logger) error {
	h := &APIHandler{
		Source:   src,
		Sessions: session.NewStore(cfg.SessionTTL),
		Config:   cfg,
		Logger:   logger,
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting server", "addr", addr, "demo", cfg.Demo)
	return http.ListenAndServe(addr, NewRouter(h, cfg.AllowedOrigins))
}
