// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/raadtech/iptrack/internal/models"
	"github.com/raadtech/iptrack/internal/store"
)

// In-memory fakes for the storage interfaces. They implement just enough
// behavior for the handlers: keyed lookups, duplicate detection and
// canned aggregation results.

type fakeAdminStore struct {
	admins       map[string]*models.Admin // by hex ID
	lastLoginIDs []primitive.ObjectID
	passwords    map[string]string // hex ID -> latest hash
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{
		admins:    make(map[string]*models.Admin),
		passwords: make(map[string]string),
	}
}

func (f *fakeAdminStore) add(admin *models.Admin) *models.Admin {
	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	f.admins[admin.ID.Hex()] = admin
	return admin
}

func (f *fakeAdminStore) Create(_ context.Context, admin *models.Admin) (primitive.ObjectID, error) {
	for _, existing := range f.admins {
		if existing.Email == admin.Email {
			return primitive.NilObjectID, store.ErrDuplicateEmail
		}
	}
	admin.Role = models.RoleAdmin
	admin.IsActive = true
	f.add(admin)
	return admin.ID, nil
}

func (f *fakeAdminStore) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	for _, admin := range f.admins {
		if admin.Email == email {
			return admin, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeAdminStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Admin, error) {
	if admin, ok := f.admins[id.Hex()]; ok {
		return admin, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeAdminStore) UpdateLastLogin(_ context.Context, id primitive.ObjectID) error {
	f.lastLoginIDs = append(f.lastLoginIDs, id)
	return nil
}

func (f *fakeAdminStore) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	if _, ok := f.admins[id.Hex()]; !ok {
		return store.ErrNotFound
	}
	f.passwords[id.Hex()] = hash
	return nil
}

type fakeUserStore struct {
	users   map[string]*models.User // by hex ID
	deleted []primitive.ObjectID
	stats   *models.UserStats
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (f *fakeUserStore) add(user *models.User) *models.User {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.users[user.ID.Hex()] = user
	return user
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return primitive.NilObjectID, store.ErrDuplicateEmail
		}
	}
	for _, existing := range f.users {
		if existing.PID == user.PID {
			return primitive.NilObjectID, store.ErrDuplicatePID
		}
	}
	f.add(user)
	return user.ID, nil
}

func (f *fakeUserStore) List(_ context.Context, page, limit int) ([]models.User, models.Pagination, error) {
	users := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, *u)
	}
	return users, models.NewPagination(page, limit, int64(len(f.users))), nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if user, ok := f.users[id.Hex()]; ok {
		return user, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) FindByPID(_ context.Context, pid string) (*models.User, error) {
	for _, user := range f.users {
		if user.PID == pid {
			return user, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) Update(_ context.Context, id primitive.ObjectID, update store.UserUpdate) error {
	user, ok := f.users[id.Hex()]
	if !ok {
		return store.ErrNotFound
	}
	for _, other := range f.users {
		if other.ID != id && other.Email == update.Email {
			return store.ErrDuplicateEmail
		}
	}
	user.Name = update.Name
	user.Email = update.Email
	user.Phone = update.Phone
	user.Shift = update.Shift
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.users[id.Hex()]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id.Hex())
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeUserStore) Stats(_ context.Context) (*models.UserStats, error) {
	if f.stats != nil {
		return f.stats, nil
	}
	return &models.UserStats{TotalUsers: int64(len(f.users))}, nil
}

type fakeIPDataStore struct {
	records []*models.IPData
	stats   *models.IPDataStats

	insertErr error
}

func (f *fakeIPDataStore) add(record *models.IPData) *models.IPData {
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	f.records = append(f.records, record)
	return record
}

func (f *fakeIPDataStore) Insert(_ context.Context, record *models.IPData) (primitive.ObjectID, error) {
	if f.insertErr != nil {
		return primitive.NilObjectID, f.insertErr
	}
	for _, existing := range f.records {
		if existing.IP == record.IP {
			return primitive.NilObjectID, store.ErrDuplicateIP
		}
	}
	f.add(record)
	return record.ID, nil
}

func (f *fakeIPDataStore) FindByPID(_ context.Context, pid string) (*models.IPData, error) {
	for _, record := range f.records {
		if record.PID == pid {
			return record, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeIPDataStore) FindByIP(_ context.Context, ip string) (*models.IPData, error) {
	for _, record := range f.records {
		if record.IP == ip {
			return record, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeIPDataStore) List(_ context.Context, page, limit int, recordType models.RecordType) ([]models.EnrichedIPData, models.Pagination, error) {
	enriched := f.enrich(recordType)
	return enriched, models.NewPagination(page, limit, int64(len(enriched))), nil
}

func (f *fakeIPDataStore) ListByShift(_ context.Context, shift models.Shift, page, limit int, recordType models.RecordType) ([]models.EnrichedIPData, models.Pagination, error) {
	var enriched []models.EnrichedIPData
	for _, e := range f.enrich(recordType) {
		if e.User.Shift != nil && *e.User.Shift == shift {
			enriched = append(enriched, e)
		}
	}
	return enriched, models.NewPagination(page, limit, int64(len(enriched))), nil
}

func (f *fakeIPDataStore) Export(_ context.Context, recordType models.RecordType) ([]models.EnrichedIPData, error) {
	return f.enrich(recordType), nil
}

func (f *fakeIPDataStore) enrich(recordType models.RecordType) []models.EnrichedIPData {
	var out []models.EnrichedIPData
	for _, record := range f.records {
		if recordType.IsFilter() && record.RecordType != recordType {
			continue
		}
		out = append(out, models.EnrichedIPData{IPData: *record})
	}
	return out
}

func (f *fakeIPDataStore) Stats(_ context.Context) (*models.IPDataStats, error) {
	if f.stats != nil {
		return f.stats, nil
	}
	return &models.IPDataStats{TotalRecords: int64(len(f.records))}, nil
}

func (f *fakeIPDataStore) DeleteByPID(_ context.Context, pid string) error {
	kept := f.records[:0]
	found := false
	for _, record := range f.records {
		if record.PID == pid {
			found = true
			continue
		}
		kept = append(kept, record)
	}
	f.records = kept
	if !found {
		return store.ErrNotFound
	}
	return nil
}

func (f *fakeIPDataStore) DeleteAll(_ context.Context) (int64, error) {
	count := int64(len(f.records))
	f.records = nil
	return count, nil
}

type fakeGeoLookup struct {
	lookup func(ctx context.Context, ip string) (*models.GeoAttributes, error)
}

func (f *fakeGeoLookup) Lookup(ctx context.Context, ip string) (*models.GeoAttributes, error) {
	return f.lookup(ctx, ip)
}

type fakeTokenIssuer struct {
	token string
	err   error
}

func (f *fakeTokenIssuer) Generate(*models.Admin) (string, error) {
	return f.token, f.err
}

// testDeps bundles the fakes behind a Handler for the route tests.
type testDeps struct {
	admins  *fakeAdminStore
	users   *fakeUserStore
	records *fakeIPDataStore
	geo     *fakeGeoLookup
	tokens  *fakeTokenIssuer
}

func newTestHandler(t *testing.T) (*Handler, *testDeps) {
	t.Helper()
	deps := &testDeps{
		admins:  newFakeAdminStore(),
		users:   newFakeUserStore(),
		records: &fakeIPDataStore{},
		geo: &fakeGeoLookup{lookup: func(context.Context, string) (*models.GeoAttributes, error) {
			return &models.GeoAttributes{IP: "0.0.0.0"}, nil
		}},
		tokens: &fakeTokenIssuer{token: "test-token"},
	}
	h := NewHandler(HandlerConfig{
		Admins:     deps.admins,
		Users:      deps.users,
		Records:    deps.records,
		Geo:        deps.geo,
		Tokens:     deps.tokens,
		BcryptCost: 4,
		Production: false,
	})
	return h, deps
}

// doJSON runs handler with an optional JSON body and returns the recorder.
func doJSON(t *testing.T, handler http.HandlerFunc, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

// doParamJSON runs handler with both a JSON body and a chi URL parameter.
func doParamJSON(t *testing.T, handler http.HandlerFunc, method, target, key, value string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

// doParam runs handler with a chi URL parameter set on the request context.
func doParam(t *testing.T, handler http.HandlerFunc, method, target, key, value string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func parseResponse(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return resp
}

func dataMap(t *testing.T, resp models.APIResponse) map[string]interface{} {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("response data is %T, want object", resp.Data)
	}
	return m
}
