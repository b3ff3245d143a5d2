// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/raadtech/iptrack/internal/logging"
	"github.com/raadtech/iptrack/internal/models"
	"github.com/raadtech/iptrack/internal/store"
)

type contextKey string

// identityKey is the context key for the authenticated admin identity.
const identityKey contextKey = "admin_identity"

// Identity is the minimal claim set attached to the request context for
// downstream authorization.
type Identity struct {
	ID    primitive.ObjectID `json:"id"`
	Email string             `json:"email"`
	Name  string             `json:"name"`
	Role  string             `json:"role"`
}

// AdminFinder resolves the admin encoded in a token against current
// storage, so deleted or deactivated accounts lose access immediately.
type AdminFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
}

// Middleware enforces token authentication and role checks.
type Middleware struct {
	tokens *TokenManager
	admins AdminFinder
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(tokens *TokenManager, admins AdminFinder) *Middleware {
	return &Middleware{tokens: tokens, admins: admins}
}

// Authenticate verifies the bearer token, re-resolves the admin and
// attaches the identity to the request context. Missing, expired and
// otherwise invalid tokens each get their own message but the same
// unauthorized status.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			unauthorized(w, "Access token required")
			return
		}

		claims, err := m.tokens.Validate(token)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				unauthorized(w, "Token expired")
				return
			}
			unauthorized(w, "Invalid token")
			return
		}

		adminID, err := primitive.ObjectIDFromHex(claims.AdminID)
		if err != nil {
			unauthorized(w, "Invalid token")
			return
		}

		admin, err := m.admins.FindByID(r.Context(), adminID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				unauthorized(w, "Admin not found")
				return
			}
			logger := logging.Ctx(r.Context())
			logger.Error().Err(err).Msg("Admin lookup failed during auth")
			internalError(w)
			return
		}

		if !admin.IsActive {
			unauthorized(w, "Account is deactivated")
			return
		}

		identity := &Identity{
			ID:    admin.ID,
			Email: admin.Email,
			Name:  admin.Name,
			Role:  admin.Role,
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests whose attached identity is not an admin.
// Must run after Authenticate.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if identity == nil || identity.Role != models.RoleAdmin {
			writeEnvelope(w, http.StatusForbidden, models.APIResponse{
				Success: false,
				Message: "Admin access required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFromContext returns the authenticated identity, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(identityKey).(*Identity); ok {
		return identity
	}
	return nil
}

// ContextWithIdentity attaches an identity to ctx. Exported for handler
// tests that bypass the middleware.
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func unauthorized(w http.ResponseWriter, message string) {
	writeEnvelope(w, http.StatusUnauthorized, models.APIResponse{
		Success: false,
		Message: message,
	})
}

func internalError(w http.ResponseWriter) {
	writeEnvelope(w, http.StatusInternalServerError, models.APIResponse{
		Success: false,
		Message: "Internal server error",
	})
}

func writeEnvelope(w http.ResponseWriter, status int, resp models.APIResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Failed to encode auth response")
	}
}
