// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/raadtech/iptrack/internal/config"
	"github.com/raadtech/iptrack/internal/models"
	"github.com/raadtech/iptrack/internal/store"
)

// fakeAdminFinder serves admins from a map keyed by hex ID.
type fakeAdminFinder struct {
	admins map[string]*models.Admin
}

func (f *fakeAdminFinder) FindByID(_ context.Context, id primitive.ObjectID) (*models.Admin, error) {
	admin, ok := f.admins[id.Hex()]
	if !ok {
		return nil, store.ErrNotFound
	}
	return admin, nil
}

func newTestMiddleware(t *testing.T, admins ...*models.Admin) (*Middleware, *TokenManager) {
	t.Helper()
	manager, err := NewTokenManager(config.SecurityConfig{
		JWTSecret:      testSecret,
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}
	finder := &fakeAdminFinder{admins: make(map[string]*models.Admin)}
	for _, a := range admins {
		finder.admins[a.ID.Hex()] = a
	}
	return NewMiddleware(manager, finder), manager
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestAuthenticate(t *testing.T) {
	active := &models.Admin{
		ID:       primitive.NewObjectID(),
		Email:    "admin@example.com",
		Name:     "Active Admin",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	inactive := &models.Admin{
		ID:       primitive.NewObjectID(),
		Email:    "gone@example.com",
		Role:     models.RoleAdmin,
		IsActive: false,
	}
	deleted := &models.Admin{
		ID:       primitive.NewObjectID(),
		Email:    "deleted@example.com",
		Role:     models.RoleAdmin,
		IsActive: true,
	}

	mw, manager := newTestMiddleware(t, active, inactive)

	activeToken, err := manager.Generate(active)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	inactiveToken, _ := manager.Generate(inactive)
	deletedToken, _ := manager.Generate(deleted)

	expiredManager, _ := NewTokenManager(config.SecurityConfig{
		JWTSecret:      testSecret,
		SessionTimeout: -time.Minute,
	})
	expiredToken, _ := expiredManager.Generate(active)

	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantMessage string
	}{
		{"valid token", "Bearer " + activeToken, http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "Access token required"},
		{"malformed header", "Token abc", http.StatusUnauthorized, "Access token required"},
		{"expired token", "Bearer " + expiredToken, http.StatusUnauthorized, "Token expired"},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized, "Invalid token"},
		{"unknown admin", "Bearer " + deletedToken, http.StatusUnauthorized, "Admin not found"},
		{"deactivated admin", "Bearer " + inactiveToken, http.StatusUnauthorized, "Account is deactivated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotIdentity *Identity
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotIdentity = IdentityFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/admin/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			mw.Authenticate(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				resp := decodeEnvelope(t, rec)
				if resp.Success {
					t.Error("success = true, want false")
				}
				if resp.Message != tt.wantMessage {
					t.Errorf("message = %q, want %q", resp.Message, tt.wantMessage)
				}
				return
			}
			if gotIdentity == nil {
				t.Fatal("identity not attached to context")
			}
			if gotIdentity.ID != active.ID {
				t.Errorf("identity.ID = %v, want %v", gotIdentity.ID, active.ID)
			}
			if gotIdentity.Email != active.Email {
				t.Errorf("identity.Email = %q, want %q", gotIdentity.Email, active.Email)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	mw, _ := newTestMiddleware(t)

	tests := []struct {
		name       string
		identity   *Identity
		wantStatus int
	}{
		{"admin role", &Identity{Role: models.RoleAdmin}, http.StatusOK},
		{"other role", &Identity{Role: "viewer"}, http.StatusForbidden},
		{"no identity", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.identity != nil {
				req = req.WithContext(ContextWithIdentity(req.Context(), tt.identity))
			}
			rec := httptest.NewRecorder()
			mw.RequireAdmin(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusForbidden {
				resp := decodeEnvelope(t, rec)
				if resp.Message != "Admin access required" {
					t.Errorf("message = %q, want %q", resp.Message, "Admin access required")
				}
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"standard", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"empty", "", ""},
		{"no scheme", "abc123", ""},
		{"wrong scheme", "Basic abc123", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := bearerToken(req); got != tt.want {
				t.Errorf("bearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
