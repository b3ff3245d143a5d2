// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/raadtech/iptrack/internal/models"
	"github.com/raadtech/iptrack/internal/store"
)

// Storage interfaces consumed by the handlers. The mongo repositories in
// internal/store satisfy them; tests substitute in-memory fakes.

// AdminStore persists admin accounts.
type AdminStore interface {
	Create(ctx context.Context, admin *models.Admin) (primitive.ObjectID, error)
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hashedPassword string) error
}

// UserStore persists end users.
type UserStore interface {
	Create(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	List(ctx context.Context, page, limit int) ([]models.User, models.Pagination, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByPID(ctx context.Context, pid string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, update store.UserUpdate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Stats(ctx context.Context) (*models.UserStats, error)
}

// IPDataStore persists and aggregates IP geolocation records.
type IPDataStore interface {
	Insert(ctx context.Context, record *models.IPData) (primitive.ObjectID, error)
	FindByPID(ctx context.Context, pid string) (*models.IPData, error)
	FindByIP(ctx context.Context, ip string) (*models.IPData, error)
	List(ctx context.Context, page, limit int, recordType models.RecordType) ([]models.EnrichedIPData, models.Pagination, error)
	ListByShift(ctx context.Context, shift models.Shift, page, limit int, recordType models.RecordType) ([]models.EnrichedIPData, models.Pagination, error)
	Export(ctx context.Context, recordType models.RecordType) ([]models.EnrichedIPData, error)
	Stats(ctx context.Context) (*models.IPDataStats, error)
	DeleteByPID(ctx context.Context, pid string) error
	DeleteAll(ctx context.Context) (int64, error)
}

// GeoLookup resolves an IP address to geolocation attributes.
type GeoLookup interface {
	Lookup(ctx context.Context, ip string) (*models.GeoAttributes, error)
}

// TokenIssuer signs session tokens for authenticated admins.
type TokenIssuer interface {
	Generate(admin *models.Admin) (string, error)
}

// Handler holds the route handlers and their dependencies.
type Handler struct {
	admins  AdminStore
	users   UserStore
	records IPDataStore
	geo     GeoLookup
	tokens  TokenIssuer

	bcryptCost int
	production bool
}

// HandlerConfig wires a Handler.
type HandlerConfig struct {
	Admins     AdminStore
	Users      UserStore
	Records    IPDataStore
	Geo        GeoLookup
	Tokens     TokenIssuer
	BcryptCost int
	Production bool
}

// NewHandler creates the route handler set.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		admins:     cfg.Admins,
		users:      cfg.Users,
		records:    cfg.Records,
		geo:        cfg.Geo,
		tokens:     cfg.Tokens,
		bcryptCost: cfg.BcryptCost,
		production: cfg.Production,
	}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return NewResponseWriter(w, r, h.production)
}

// decodeJSON decodes the request body into dst. A false return means an
// error response was already written.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respond(w, r).BadRequest("Invalid request body")
		return false
	}
	return true
}
