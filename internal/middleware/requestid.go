// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

// Package middleware holds HTTP middleware shared across routes.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/raadtech/iptrack/internal/logging"
)

// RequestID assigns each request a unique ID, visible to the client via
// the X-Request-ID response header and to log lines via context.
// An upstream-provided X-Request-ID is honored.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
