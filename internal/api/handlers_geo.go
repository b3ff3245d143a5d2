// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"net/http"

	"github.com/raadtech/iptrack/internal/geoip"
	"github.com/raadtech/iptrack/internal/logging"
	"github.com/raadtech/iptrack/internal/metrics"
	"github.com/raadtech/iptrack/internal/models"
)

// Geo handles POST /geo: proxy a geolocation lookup for the submitted
// IP to the third-party service.
func (h *Handler) Geo(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	var req GeoRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.IP == "" {
		rw.writeError(http.StatusBadRequest, "missing_ip", "IP address is required")
		return
	}

	data, err := h.geo.Lookup(r.Context(), req.IP)
	if errors.Is(err, geoip.ErrRateLimited) {
		metrics.GeoLookupErrors.WithLabelValues("rate_limited").Inc()
		rw.TooManyRequests("rate_limit_exceeded", "Geo API rate limit exceeded. Please try again later.", 3600)
		return
	}
	if err != nil {
		metrics.GeoLookupErrors.WithLabelValues("upstream").Inc()
		rw.InternalErrorCode("lookup_failed", "Failed to fetch geo location data", err)
		return
	}

	logger := logging.Ctx(r.Context())
	logger.Info().Str("ip", req.IP).Msg("Geo lookup succeeded")

	rw.writeJSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    data,
		Message: "Geo data fetched successfully",
	})
}

// writeError writes a failure with a machine-readable error code.
func (rw *ResponseWriter) writeError(status int, code, message string) {
	rw.writeJSON(status, models.APIResponse{Success: false, Error: code, Message: message})
}
