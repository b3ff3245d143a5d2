// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

// Package main is the entry point for the IPTrack server.
//
// IPTrack is an administrative backend for collecting and reviewing
// per-user IP geolocation records. It exposes a REST API to register
// users, accept IP record submissions keyed by personal ID, authenticate
// administrators with bearer tokens, and proxy lookups to the ipinfo.io
// Lite API.
//
// Startup order: configuration (Koanf: defaults, optional YAML file,
// environment), logging (zerolog), MongoDB (one client for the process
// lifetime, unique indexes ensured), repositories, token manager, HTTP
// router (chi). Missing required configuration (MONGODB_URI, JWT_SECRET,
// IPINFO_TOKEN) terminates the process immediately.
//
// The server drains in-flight requests for up to 10 seconds on SIGINT or
// SIGTERM, then closes the MongoDB client.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raadtech/iptrack/internal/api"
	"github.com/raadtech/iptrack/internal/auth"
	"github.com/raadtech/iptrack/internal/config"
	"github.com/raadtech/iptrack/internal/database"
	"github.com/raadtech/iptrack/internal/geoip"
	"github.com/raadtech/iptrack/internal/logging"
	"github.com/raadtech/iptrack/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Starting IPTrack server")

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}

	admins := store.NewAdmins(db)
	users := store.NewUsers(db)
	records := store.NewIPRecords(db)

	tokens, err := auth.NewTokenManager(cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize token manager")
	}

	handler := api.NewHandler(api.HandlerConfig{
		Admins:     admins,
		Users:      users,
		Records:    records,
		Geo:        geoip.NewClient(cfg.GeoIP),
		Tokens:     tokens,
		BcryptCost: cfg.Security.BcryptCost,
		Production: cfg.IsProduction(),
	})

	authMW := auth.NewMiddleware(tokens, admins)
	router := api.NewRouter(handler, authMW, cfg.Server.CORSOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logging.Fatal().Err(err).Msg("HTTP server failed")
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := db.Close(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("MongoDB close failed")
	}

	logging.Info().Msg("Shutdown complete")
}
