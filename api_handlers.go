package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"samparkdash/cmd"
	"samparkdash/internal/config"
	"samparkdash/internal/drilldown"
	"samparkdash/internal/indicators"
	"samparkdash/internal/sampark"
	"samparkdash/internal/session"
	"samparkdash/internal/tableutil"
)

// SessionHeader carries the id returned by the verify call.
const SessionHeader = "X-Session-ID"

// Number of top performers in the state summary.
const summaryTop = 5

type sessionKey struct{}

// APIHandler handles JSON API requests
type APIHandler struct {
	Source   cmd.Source
	Sessions *session.Store
	Config   *config.Config
	Logger   *slog.Logger
}

func (h *APIHandler) log() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// RequestOTP asks the API to text a one-time password
func (h *APIHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req sampark.OTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	result, err := h.Source.RequestOTP(r.Context(), req.PhoneNumber)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// VerifyOTP validates the OTP and starts a session
func (h *APIHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req sampark.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	creds, err := h.Source.ValidateOTP(r.Context(), req.PhoneNumber, req.OTP)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	sess := h.Sessions.Create(creds)
	h.log().Info("Session started", "session_id", sess.ID, "role", sess.User.Role, "state", sess.User.State)
	respondJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"user":       sess.User,
	})
}

// Logout ends the session
func (h *APIHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	h.Sessions.Delete(sess.ID)
	h.log().Info("Session ended", "session_id", sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

// GetSession returns the user and the selected district
func (h *APIHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"session_id": sess.ID,
		"user":       sess.User,
		"district":   sess.District,
		"created_at": sess.CreatedAt,
	})
}

// RequireSession rejects requests without a live session
func (h *APIHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if id == "" {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Missing " + SessionHeader + " header"})
			return
		}
		sess, err := h.Sessions.Get(id)
		if err != nil {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Session expired, please log in again"})
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey{}).(*session.Session)
	return sess
}

// StateSummary returns the key metrics and top performers of the state view
func (h *APIHandler) StateSummary(w http.ResponseWriter, r *http.Request) {
	dash := h.dashboard(r)
	ds, err := dash.Load(r.Context(), drilldown.State, "")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	state := ds.(indicators.StateDataset)
	t := indicators.NewLeadingTable(state.LeadingIndicators, state.Criteria, indicators.WithLogger(h.log()))

	top := make([]indicators.ViewRow, 0, summaryTop)
	for _, row := range indicators.Top(t, indicators.KeyTeacherAcceptance, summaryTop) {
		top = append(top, t.Render(row))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"state":         state.StateData,
		"lastUpdated":   state.LastUpdatedDate,
		"summary":       indicators.Summarize(state.LeadingIndicators),
		"topPerformers": top,
		"tiers":         indicators.TierCounts(t),
	})
}

// StateTable serves one table of the state view
func (h *APIHandler) StateTable(w http.ResponseWriter, r *http.Request) {
	h.serveTable(w, r, drilldown.State, "", false)
}

// StateExport downloads one table of the state view as CSV
func (h *APIHandler) StateExport(w http.ResponseWriter, r *http.Request) {
	h.serveTable(w, r, drilldown.State, "", true)
}

// DistrictTable serves one table of a district and selects that district
// for later block requests
func (h *APIHandler) DistrictTable(w http.ResponseWriter, r *http.Request) {
	h.serveTable(w, r, drilldown.District, chi.URLParam(r, "districtID"), false)
}

// DistrictExport downloads one table of a district as CSV
func (h *APIHandler) DistrictExport(w http.ResponseWriter, r *http.Request) {
	h.serveTable(w, r, drilldown.District, chi.URLParam(r, "districtID"), true)
}

// BlockTable serves the school table of a block
func (h *APIHandler) BlockTable(w http.ResponseWriter, r *http.Request) {
	h.serveTable(w, r, drilldown.Block, chi.URLParam(r, "blockID"), false)
}

// BlockExport downloads the school table of a block as CSV
func (h *APIHandler) BlockExport(w http.ResponseWriter, r *http.Request) {
	h.serveTable(w, r, drilldown.Block, chi.URLParam(r, "blockID"), true)
}

func (h *APIHandler) dashboard(r *http.Request) cmd.Dashboard {
	return cmd.Dashboard{Source: h.Source, Config: h.Config, Session: sessionFrom(r.Context())}
}

func (h *APIHandler) serveTable(w http.ResponseWriter, r *http.Request, level drilldown.Level, id string, export bool) {
	kind, err := indicators.ParseKind(chi.URLParam(r, "table"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	query, err := parseQuery(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	dash := h.dashboard(r)
	if level == drilldown.Block {
		if districtID := r.URL.Query().Get("district"); districtID != "" {
			scoped := *dash.Session
			scoped.District = &session.Selection{ID: districtID}
			dash.Session = &scoped
		}
	}

	ds, err := dash.Load(r.Context(), level, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if district, ok := ds.(indicators.DistrictDataset); ok {
		if _, err := h.Sessions.SelectDistrict(dash.Session.ID, id, district.DistrictData.Name); err != nil {
			h.log().Warn("Failed to remember district", "error", err, "session_id", dash.Session.ID)
		}
	}

	t, err := ds.Table(kind, indicators.WithLevel(level), indicators.WithPageSize(h.Config.PageSize), indicators.WithLogger(h.log()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	t.Apply(query)

	if !export {
		respondJSON(w, http.StatusOK, t.View())
		return
	}

	records := t.Records()
	if len(records) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	filename := tableutil.ExportFilename(t.Slug(), time.Now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if err := tableutil.WriteCSV(w, records, t.Headers()); err != nil {
		h.log().Error("CSV export failed", "error", err, "table", kind.String(), "level", level.String())
	}
}

// parseQuery reads q, filter, subject, sort, dir, page and pageSize.
func parseQuery(r *http.Request) (indicators.Query, error) {
	v := r.URL.Query()
	q := indicators.Query{
		Search:    v.Get("q"),
		Filter:    v.Get("filter"),
		Subject:   v.Get("subject"),
		Sort:      v.Get("sort"),
		Direction: v.Get("dir"),
	}
	// Out of range numbers are clamped by the table; only non-integers fail.
	var err error
	if s := v.Get("page"); s != "" {
		if q.Page, err = strconv.Atoi(s); err != nil {
			return q, fmt.Errorf("invalid page %q", s)
		}
	}
	if s := v.Get("pageSize"); s != "" {
		if q.PageSize, err = strconv.Atoi(s); err != nil {
			return q, fmt.Errorf("invalid pageSize %q", s)
		}
	}
	return q, nil
}

// respondError maps err onto a status code and a JSON error body.
func (h *APIHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *sampark.ValidationError
	var apiErr *sampark.APIError
	var respErr *sampark.ResponseError

	switch {
	case errors.As(err, &vErr):
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": vErr.Error(), "fields": vErr.Fields})
	case errors.Is(err, indicators.ErrUnknownTable):
		respondJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, cmd.ErrNoDistrict):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Select a district before opening a block"})
	case errors.Is(err, cmd.ErrNotLoggedIn), errors.Is(err, session.ErrNotFound):
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Session expired, please log in again"})
	case errors.Is(err, sampark.ErrNoBaseURL):
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	case errors.As(err, &apiErr):
		respondJSON(w, upstreamStatus(apiErr.Status), map[string]string{"error": apiErr.Message})
	case errors.As(err, &respErr):
		h.log().Error("Upstream returned a non-JSON response", "status", respErr.Status, "content_type", respErr.ContentType, "path", r.URL.Path)
		respondJSON(w, http.StatusBadGateway, map[string]string{"error": respErr.Error()})
	default:
		h.log().Error("Request failed", "error", err, "path", r.URL.Path)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}

// upstreamStatus maps the status of a failed API call onto ours. Failures
// flagged in a 2xx envelope are the caller's fault.
func upstreamStatus(status int) int {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return http.StatusUnauthorized
	case status >= 400 && status < 500:
		return status
	case status >= 200 && status < 300:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// respondJSON is a helper function to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("JSON encoding error", "error", err)
	}
}
