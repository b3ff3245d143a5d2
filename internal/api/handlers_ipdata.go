// IPTrack - per-user IP geolocation collection backend
// Copyright 2026 RaadTech
// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/raadtech/iptrack/internal/logging"
	"github.com/raadtech/iptrack/internal/models"
	"github.com/raadtech/iptrack/internal/store"
	"github.com/raadtech/iptrack/internal/validation"
)

// StoreIPData handles POST /ip-data, the public submission route.
// The PID must belong to a registered user and the IP must be new;
// the duplicate response includes the prior owner as guidance.
func (h *Handler) StoreIPData(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	var req StoreIPDataRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.PID == "" {
		rw.BadRequest("PID is required")
		return
	}
	if req.RecordType == "" {
		rw.BadRequest("Record type is required")
		return
	}
	if !models.RecordType(req.RecordType).Valid() {
		rw.BadRequest("Invalid record type. Must be one of: Search, Session, Click")
		return
	}
	if req.IPData.IP == "" {
		rw.BadRequest("IP data is required")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		rw.BadRequest(verr.Error())
		return
	}

	_, err := h.users.FindByPID(r.Context(), req.PID)
	if errors.Is(err, store.ErrNotFound) {
		rw.Forbidden("Invalid PID. This PID is not registered in our system", map[string]interface{}{
			"pid":        req.PID,
			"suggestion": "Please contact administrator to register your PID",
		})
		return
	}
	if err != nil {
		rw.InternalError(err)
		return
	}

	existing, err := h.records.FindByIP(r.Context(), req.IPData.IP)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		rw.InternalError(err)
		return
	}
	if existing != nil {
		rw.Conflict("This IP address has already been saved", duplicateIPGuidance(existing))
		return
	}

	record := &models.IPData{
		PID:           req.PID,
		RecordType:    models.RecordType(req.RecordType),
		GeoAttributes: req.IPData,
	}

	id, err := h.records.Insert(r.Context(), record)
	if errors.Is(err, store.ErrDuplicateIP) {
		// Lost the race past the pre-check; the unique index caught it.
		prior, ferr := h.records.FindByIP(r.Context(), req.IPData.IP)
		if ferr == nil {
			rw.Conflict("This IP address has already been saved", duplicateIPGuidance(prior))
			return
		}
		rw.Conflict("This IP address has already been saved", nil)
		return
	}
	if err != nil {
		rw.InternalError(err)
		return
	}

	logger := logging.Ctx(r.Context())
	logger.Info().
		Str("pid", req.PID).
		Str("ip", req.IPData.IP).
		Str("record_type", req.RecordType).
		Msg("IP record stored")

	rw.Created("IP data stored successfully", map[string]interface{}{
		"id":          id,
		"pid":         req.PID,
		"record_type": req.RecordType,
		"ip":          req.IPData.IP,
		"city":        req.IPData.City,
		"country":     req.IPData.CountryName,
	})
}

// duplicateIPGuidance shapes the conflict payload pointing at the record
// that already owns the address.
func duplicateIPGuidance(existing *models.IPData) map[string]interface{} {
	return map[string]interface{}{
		"existingPid": existing.PID,
		"ip":          existing.IP,
		"location":    fmt.Sprintf("%s, %s", strOrEmpty(existing.City), strOrEmpty(existing.CountryName)),
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// GetIPDataByPID handles GET /ip-data/{pid}, the public fetch route.
func (h *Handler) GetIPDataByPID(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	record, err := h.records.FindByPID(r.Context(), chi.URLParam(r, "pid"))
	if errors.Is(err, store.ErrNotFound) {
		rw.NotFound("IP data not found for this PID")
		return
	}
	if err != nil {
		rw.InternalError(err)
		return
	}

	rw.Success(record)
}

// ListIPData handles GET /ip-data: the paginated, user-enriched listing
// with an optional record_type filter.
func (h *Handler) ListIPData(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	page, limit := pageParams(r)
	recordType := models.RecordType(r.URL.Query().Get("record_type"))

	data, pagination, err := h.records.List(r.Context(), page, limit, recordType)
	if err != nil {
		rw.InternalError(err)
		return
	}

	rw.SuccessPage(data, pagination)
}

// ListIPDataByShift handles GET /ip-data/shift/{shiftID}. Records whose
// PID matches no user are excluded on this path.
func (h *Handler) ListIPDataByShift(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	shiftID, err := strconv.Atoi(chi.URLParam(r, "shiftID"))
	if err != nil || !models.Shift(shiftID).Valid() {
		rw.BadRequest("Invalid shift ID. Must be 1 (Morning), 2 (Evening), or 3 (Night)")
		return
	}

	page, limit := pageParams(r)
	recordType := models.RecordType(r.URL.Query().Get("record_type"))

	data, pagination, err := h.records.ListByShift(r.Context(), models.Shift(shiftID), page, limit, recordType)
	if err != nil {
		rw.InternalError(err)
		return
	}

	rw.SuccessPage(data, pagination)
}

// ExportIPData handles GET /ip-data/export: the full enriched record set
// without pagination, for admin exports.
func (h *Handler) ExportIPData(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	recordType := models.RecordType(r.URL.Query().Get("record_type"))
	data, err := h.records.Export(r.Context(), recordType)
	if err != nil {
		rw.InternalError(err)
		return
	}

	rw.Success(data)
}

// IPDataStats handles GET /ip-data-stats.
func (h *Handler) IPDataStats(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	stats, err := h.records.Stats(r.Context())
	if err != nil {
		rw.InternalError(err)
		return
	}

	rw.Success(stats)
}

// DeleteIPDataByPID handles DELETE /ip-data/{pid}.
func (h *Handler) DeleteIPDataByPID(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	err := h.records.DeleteByPID(r.Context(), chi.URLParam(r, "pid"))
	if errors.Is(err, store.ErrNotFound) {
		rw.NotFound("IP data not found for this PID")
		return
	}
	if err != nil {
		rw.InternalError(err)
		return
	}

	rw.SuccessMessage("IP data deleted successfully", nil)
}

// DeleteAllIPData handles DELETE /ip-data.
func (h *Handler) DeleteAllIPData(w http.ResponseWriter, r *http.Request) {
	rw := h.respond(w, r)

	count, err := h.records.DeleteAll(r.Context())
	if err != nil {
		rw.InternalError(err)
		return
	}

	logger := logging.Ctx(r.Context())
	logger.Warn().Int64("count", count).Msg("All IP records deleted")

	rw.SuccessMessage(fmt.Sprintf("Successfully deleted %d IP data records", count), map[string]interface{}{
		"deletedCount": count,
	})
}
