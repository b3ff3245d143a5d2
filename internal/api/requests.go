// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"strconv"

	"github.com/raadtech/iptrack/internal/models"
)

// Request bodies with go-playground/validator v10 tags. Each is decoded
// and validated at the route boundary before any storage call.

// LoginRequest is the body for POST /admin/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterAdminRequest is the body for POST /admin/register.
type RegisterAdminRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// ChangePasswordRequest is the body for PUT /admin/change-password.
type ChangePasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// CreateUserRequest is the body for POST /users. PID is numeric-string
// and immutable once stored.
type CreateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,min=10"`
	Shift int    `json:"shift" validate:"required,oneof=1 2 3"`
	PID   string `json:"PID" validate:"required,numeric"`
}

// UpdateUserRequest is the body for PUT /users/{id}. PID is absent:
// it cannot be changed.
type UpdateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,min=10"`
	Shift int    `json:"shift" validate:"required,oneof=1 2 3"`
}

// StoreIPDataRequest is the body for POST /ip-data.
type StoreIPDataRequest struct {
	PID        string               `json:"pid" validate:"required"`
	RecordType string               `json:"record_type" validate:"required,oneof=Search Session Click"`
	IPData     models.GeoAttributes `json:"ipData"`
}

// GeoRequest is the body for POST /geo.
type GeoRequest struct {
	IP string `json:"ip" validate:"required"`
}

// pageParams reads page and limit query parameters with the listing
// defaults (page 1, limit 10). Non-positive or malformed values fall
// back to the defaults.
func pageParams(r *http.Request) (page, limit int) {
	page = intParam(r, "page", 1)
	limit = intParam(r, "limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
