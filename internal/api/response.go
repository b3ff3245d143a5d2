// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

// Package api implements the HTTP route handlers and router.
package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/raadtech/iptrack/internal/logging"
	"github.com/raadtech/iptrack/internal/models"
)

// ResponseWriter writes the standard JSON envelope for one request.
type ResponseWriter struct {
	w http.ResponseWriter
	r *http.Request

	// production suppresses diagnostic detail on internal errors.
	production bool
}

// NewResponseWriter creates a response writer for the request.
func NewResponseWriter(w http.ResponseWriter, r *http.Request, production bool) *ResponseWriter {
	return &ResponseWriter{w: w, r: r, production: production}
}

// Success writes a 200 response with data.
func (rw *ResponseWriter) Success(data interface{}) {
	rw.writeJSON(http.StatusOK, models.APIResponse{Success: true, Data: data})
}

// SuccessMessage writes a 200 response with a message and optional data.
func (rw *ResponseWriter) SuccessMessage(message string, data interface{}) {
	rw.writeJSON(http.StatusOK, models.APIResponse{Success: true, Message: message, Data: data})
}

// SuccessPage writes a 200 response with data and pagination metadata.
func (rw *ResponseWriter) SuccessPage(data interface{}, pagination models.Pagination) {
	rw.writeJSON(http.StatusOK, models.APIResponse{Success: true, Data: data, Pagination: &pagination})
}

// Created writes a 201 response with a message and data.
func (rw *ResponseWriter) Created(message string, data interface{}) {
	rw.writeJSON(http.StatusCreated, models.APIResponse{Success: true, Message: message, Data: data})
}

// BadRequest writes a 400 validation failure.
func (rw *ResponseWriter) BadRequest(message string) {
	rw.writeJSON(http.StatusBadRequest, models.APIResponse{Success: false, Message: message})
}

// Unauthorized writes a 401 authorization failure.
func (rw *ResponseWriter) Unauthorized(message string) {
	rw.writeJSON(http.StatusUnauthorized, models.APIResponse{Success: false, Message: message})
}

// Forbidden writes a 403 with a message and optional guidance data.
func (rw *ResponseWriter) Forbidden(message string, data interface{}) {
	rw.writeJSON(http.StatusForbidden, models.APIResponse{Success: false, Message: message, Data: data})
}

// NotFound writes a 404.
func (rw *ResponseWriter) NotFound(message string) {
	rw.writeJSON(http.StatusNotFound, models.APIResponse{Success: false, Message: message})
}

// Conflict writes a 409 with a message and optional guidance data.
func (rw *ResponseWriter) Conflict(message string, data interface{}) {
	rw.writeJSON(http.StatusConflict, models.APIResponse{Success: false, Message: message, Data: data})
}

// TooManyRequests writes a 429 with an error code and retry hint.
func (rw *ResponseWriter) TooManyRequests(code, message string, retryAfter int) {
	rw.writeJSON(http.StatusTooManyRequests, models.APIResponse{
		Success:    false,
		Error:      code,
		Message:    message,
		RetryAfter: retryAfter,
	})
}

// InternalError logs err and writes a generic 500. Outside production
// the underlying error text is included as detail.
func (rw *ResponseWriter) InternalError(err error) {
	logger := logging.Ctx(rw.r.Context())
	logger.Error().Err(err).
		Str("method", rw.r.Method).
		Str("path", rw.r.URL.Path).
		Msg("Request failed")

	resp := models.APIResponse{Success: false, Message: "Internal server error"}
	if !rw.production && err != nil {
		resp.Details = err.Error()
	}
	rw.writeJSON(http.StatusInternalServerError, resp)
}

// InternalErrorCode is InternalError with a machine-readable error code
// and custom message, used by the geo proxy.
func (rw *ResponseWriter) InternalErrorCode(code, message string, err error) {
	logger := logging.Ctx(rw.r.Context())
	logger.Error().Err(err).Str("code", code).Msg("Request failed")

	resp := models.APIResponse{Success: false, Error: code, Message: message}
	if !rw.production && err != nil {
		resp.Details = err.Error()
	}
	rw.writeJSON(http.StatusInternalServerError, resp)
}

func (rw *ResponseWriter) writeJSON(status int, resp models.APIResponse) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(status)
	if err := json.NewEncoder(rw.w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
