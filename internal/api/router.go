// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raadtech/iptrack/internal/auth"
	"github.com/raadtech/iptrack/internal/middleware"
)

// NewRouter mounts all routes with the global middleware stack.
func NewRouter(h *Handler, authMW *auth.Middleware, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Public routes.
		r.Post("/admin/login", h.Login)
		r.Post("/admin/register", h.RegisterAdmin)
		r.Put("/admin/change-password", h.ChangePassword)
		r.Post("/ip-data", h.StoreIPData)
		r.Get("/ip-data/{pid}", h.GetIPDataByPID)
		r.Post("/geo", h.Geo)

		// Token-holder routes.
		r.With(authMW.Authenticate).Get("/admin/profile", h.Profile)

		// Admin-only routes.
		r.Group(func(r chi.Router) {
			r.Use(authMW.Authenticate)
			r.Use(authMW.RequireAdmin)

			r.Get("/ip-data", h.ListIPData)
			r.Get("/ip-data/export", h.ExportIPData)
			r.Get("/ip-data/shift/{shiftID}", h.ListIPDataByShift)
			r.Get("/ip-data-stats", h.IPDataStats)
			r.Delete("/ip-data/{pid}", h.DeleteIPDataByPID)
			r.Delete("/ip-data", h.DeleteAllIPData)

			r.Get("/users", h.ListUsers)
			r.Post("/users", h.CreateUser)
			r.Get("/users/{id}", h.GetUser)
			r.Put("/users/{id}", h.UpdateUser)
			r.Delete("/users/{id}", h.DeleteUser)
			r.Get("/users-stats", h.UserStats)
		})
	})

	return r
}
