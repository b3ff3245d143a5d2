// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/raadtech/iptrack/internal/models"
	"github.com/raadtech/iptrack/internal/store"
	"github.com/raadtech/iptrack/internal/validation"
)

// userIDParam parses the {id} path parameter into a canonical ObjectID.
// A false return means an error response was already written.
func (h *Handler) userIDParam(rw *ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		rw.BadRequest("Invalid user ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	page, limit := pageParams(r)
	users, pagination, err := h.users.List(r.Context(), page, limit)
	if err != nil {
		rw.InternalError(err)
		return
	}

	rw.SuccessPage(users, pagination)
}

// GetUser handles GET /users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	id, ok := h.userIDParam(rw, r)
	if !ok {
		return
	}

	user, err := h.users.FindByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		rw.NotFound("User not found")
		return
	}
	if err != nil {
		rw.InternalError(err)
		return
	}

	rw.Success(user)
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	var req CreateUserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.BadRequest(verr.Error())
		return
	}

	user := &models.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Phone: strings.TrimSpace(req.Phone),
		Shift: models.Shift(req.Shift),
		PID:   strings.TrimSpace(req.PID),
	}

	id, err := h.users.Create(r.Context(), user)
	switch {
	case errors.Is(err, store.ErrDuplicateEmail):
		rw.Conflict("Email already exists", nil)
		return
	case errors.Is(err, store.ErrDuplicatePID):
		rw.Conflict("PID already exists", nil)
		return
	case err != nil:
		rw.InternalError(err)
		return
	}

	user.ID = id
	rw.Created("User created successfully", user)
}

// UpdateUser handles PUT /users/{id}. The PID never changes.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	id, ok := h.userIDParam(rw, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.BadRequest(verr.Error())
		return
	}

	update := store.UserUpdate{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Phone: strings.TrimSpace(req.Phone),
		Shift: models.Shift(req.Shift),
	}

	err := h.users.Update(r.Context(), id, update)
	switch {
	case errors.Is(err, store.ErrNotFound):
		rw.NotFound("User not found")
		return
	case errors.Is(err, store.ErrDuplicateEmail):
		rw.Conflict("Email already exists", nil)
		return
	case err != nil:
		rw.InternalError(err)
		return
	}

	rw.SuccessMessage("User updated successfully", map[string]interface{}{
		"id":    id,
		"name":  update.Name,
		"email": update.Email,
		"phone": update.Phone,
		"shift": update.Shift,
	})
}

// DeleteUser handles DELETE /users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	id, ok := h.userIDParam(rw, r)
	if !ok {
		return
	}

	user, err := h.users.FindByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		rw.NotFound("User not found")
		return
	}
	if err != nil {
		rw.InternalError(err)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			rw.NotFound("User not found")
			return
		}
		rw.InternalError(err)
		return
	}

	rw.SuccessMessage("User deleted successfully", map[string]interface{}{
		"id":    id,
		"name":  user.Name,
		"email": user.Email,
	})
}

// UserStats handles GET /users-stats.
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	stats, err := h.users.Stats(r.Context())
	if err != nil {
		rw.InternalError(err)
		return
	}

	rw.Success(stats)
}
