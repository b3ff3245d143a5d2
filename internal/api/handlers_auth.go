// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/raadtech/iptrack/internal/auth"
	"github.com/raadtech/iptrack/internal/logging"
	"github.com/raadtech/iptrack/internal/models"
	"github.com/raadtech/iptrack/internal/store"
	"github.com/raadtech/iptrack/internal/validation"
)

// Login handles POST /admin/login: verify credentials, issue a session
// token and stamp lastLogin.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	var req LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		rw.BadRequest("Email and password are required")
		return
	}

	admin, err := h.admins.FindByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		rw.Unauthorized("Invalid email or password")
		return
	}
	if err != nil {
		rw.InternalError(err)
		return
	}

	if !admin.IsActive {
		rw.Unauthorized("Account is deactivated. Please contact administrator.")
		return
	}

	if !auth.CheckPassword(admin.Password, req.Password) {
		rw.Unauthorized("Invalid email or password")
		return
	}

	token, err := h.tokens.Generate(admin)
	if err != nil {
		rw.InternalError(err)
		return
	}

	if err := h.admins.UpdateLastLogin(r.Context(), admin.ID); err != nil {
		rw.InternalError(err)
		return
	}

	logger := logging.Ctx(r.Context())
	logger.Info().Str("email", admin.Email).Msg("Admin logged in")

	rw.SuccessMessage("Login successful", map[string]interface{}{
		"token": token,
		"admin": map[string]interface{}{
			"id":        admin.ID,
			"name":      admin.Name,
			"email":     admin.Email,
			"role":      admin.Role,
			"lastLogin": admin.LastLogin,
		},
	})
}

// RegisterAdmin handles POST /admin/register.
func (h *Handler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	var req RegisterAdminRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.BadRequest(verr.Error())
		return
	}

	hashed, err := auth.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		rw.InternalError(err)
		return
	}

	admin := &models.Admin{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
	}

	id, err := h.admins.Create(r.Context(), admin)
	if errors.Is(err, store.ErrDuplicateEmail) {
		rw.Conflict("Admin with this email already exists", nil)
		return
	}
	if err != nil {
		rw.InternalError(err)
		return
	}

	rw.Created("Admin account created successfully", map[string]interface{}{
		"adminId": id,
		"name":    admin.Name,
		"email":   admin.Email,
		"role":    admin.Role,
	})
}

// Profile handles GET /admin/profile for the authenticated caller.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	identity := auth.IdentityFromContext(r.Context())
	if identity == nil {
		rw.Unauthorized("Access token required")
		return
	}

	admin, err := h.admins.FindByID(r.Context(), identity.ID)
	if errors.Is(err, store.ErrNotFound) {
		rw.NotFound("Admin not found")
		return
	}
	if err != nil {
		rw.InternalError(err)
		return
	}

	rw.Success(map[string]interface{}{"admin": admin})
}

// ChangePassword handles PUT /admin/change-password. The reset flow is
// keyed by email and deliberately unauthenticated.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	var req ChangePasswordRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.BadRequest(verr.Error())
		return
	}

	admin, err := h.admins.FindByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		rw.NotFound("Admin with this email does not exist")
		return
	}
	if err != nil {
		rw.InternalError(err)
		return
	}

	if !admin.IsActive {
		rw.BadRequest("Account is deactivated. Please contact administrator.")
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword, h.bcryptCost)
	if err != nil {
		rw.InternalError(err)
		return
	}

	if err := h.admins.UpdatePassword(r.Context(), admin.ID, hashed); err != nil {
		rw.InternalError(err)
		return
	}

	logger := logging.Ctx(r.Context())
	logger.Info().
		Str("email", admin.Email).
		Time("at", time.Now()).
		Msg("Admin password changed")

	rw.SuccessMessage("Password changed successfully", nil)
}
