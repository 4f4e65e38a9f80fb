package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/worktracker/internal/apperror"
	"github.com/sakif/worktracker/internal/auth"
	"github.com/sakif/worktracker/internal/service"
)

// TimerHandler exposes the work-tracking endpoints under /api/timer.
// Every route is behind RequireAuth, so a session is always in context.
type TimerHandler struct {
	service *service.TimerService
	logger  *slog.Logger
}

// NewTimerHandler creates a TimerHandler.
func NewTimerHandler(svc *service.TimerService, logger *slog.Logger) *TimerHandler {
	return &TimerHandler{service: svc, logger: logger}
}

// entryRequest is the body of manual entry create/update.
type entryRequest struct {
	StartAt string `json:"startAt"`
	EndAt   string `json:"endAt"`
}

// adjustmentRequest is the body of the day-adjustment upsert.
type adjustmentRequest struct {
	DayType           string `json:"dayType"`
	PermissionMinutes int    `json:"permissionMinutes"`
}

// HandleStatus returns the running timer, if any.
//
// HTTP: GET /api/timer/status → {activeEntry: Entry|null}
func (h *TimerHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	active, err := h.service.Status(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"activeEntry": active})
}

// HandleStart opens a new timer entry.
//
// HTTP: POST /api/timer/start → 201 {message,entry} | 409 already running
func (h *TimerHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	entry, err := h.service.Start(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "clock-in recorded",
		"entry":   entry,
	})
}

// HandleStop closes the running timer entry.
//
// HTTP: POST /api/timer/stop → 200 {message,entry} | 409 none running |
// 400 computed end not after start
func (h *TimerHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	entry, err := h.service.Stop(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "clock-out recorded",
		"entry":   entry,
	})
}

// HandleListEntries returns entries in the queried range.
//
// HTTP: GET /api/timer/entries?from=ISO&to=ISO → {entries:[...]}
func (h *TimerHandler) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	from, to, ok := rangeParams(w, r)
	if !ok {
		return
	}

	entries, err := h.service.ListEntries(r.Context(), session.UserID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// HandleCreateEntry inserts a manual entry.
//
// HTTP: POST /api/timer/entries {startAt,endAt} → 201 {message,entry} |
// 400 invalid/ordering | 409 overlap
func (h *TimerHandler) HandleCreateEntry(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	start, end, ok := entryBody(w, r)
	if !ok {
		return
	}

	entry, err := h.service.CreateEntry(r.Context(), session.UserID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "manual entry saved",
		"entry":   entry,
	})
}

// HandleUpdateEntry rewrites an entry's interval.
//
// HTTP: PUT /api/timer/entries/{entryID} {startAt,endAt} → 200 | 400 |
// 404 | 409 overlap
func (h *TimerHandler) HandleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	entryID := chi.URLParam(r, "entryID")
	start, end, ok := entryBody(w, r)
	if !ok {
		return
	}

	entry, err := h.service.UpdateEntry(r.Context(), session.UserID, entryID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "entry updated",
		"entry":   entry,
	})
}

// HandleListAdjustments returns day adjustments in the queried range.
//
// HTTP: GET /api/timer/day-adjustments?from=ISO&to=ISO → {adjustments:[...]}
func (h *TimerHandler) HandleListAdjustments(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	from, to, ok := rangeParams(w, r)
	if !ok {
		return
	}

	adjustments, err := h.service.ListAdjustments(r.Context(), session.UserID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"adjustments": adjustments})
}

// HandleSaveAdjustment upserts a day's adjustment.
//
// HTTP: PUT /api/timer/day-adjustments/{dayDate} {dayType,permissionMinutes}
// → 200 {message,adjustment} | 400 invalid type/minutes/day
func (h *TimerHandler) HandleSaveAdjustment(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	var req adjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badJSON(w)
		return
	}

	adj, err := h.service.SaveAdjustment(r.Context(), session.UserID,
		chi.URLParam(r, "dayDate"), req.DayType, req.PermissionMinutes)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "day updated",
		"adjustment": adj,
	})
}

// HandleResetDay wipes one calendar day: its entries and its adjustment,
// atomically.
//
// HTTP: DELETE /api/timer/day/{dayDate} → 200 {message,dayDate} | 400
func (h *TimerHandler) HandleResetDay(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	dayDate := chi.URLParam(r, "dayDate")
	if err := h.service.ResetDay(r.Context(), session.UserID, dayDate); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "day reset",
		"dayDate": dayDate,
	})
}

// HandleWeekSummary returns the aggregated week view.
//
// HTTP: GET /api/timer/week-summary?start=YYYY-MM-DD → 200 week summary.
// start may be any day of the wanted week (normalized to Monday); absent
// means the current week.
func (h *TimerHandler) HandleWeekSummary(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())

	week, err := h.service.WeekSummary(r.Context(), session.UserID, r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, week)
}

// rangeParams parses the from/to query instants. Writes the 400 itself so
// callers can just bail on !ok.
func rangeParams(w http.ResponseWriter, r *http.Request) (from, to time.Time, ok bool) {
	var err error
	if from, err = time.Parse(time.RFC3339, r.URL.Query().Get("from")); err != nil {
		writeError(w, apperror.ValidationFailed("from", "from must be an RFC 3339 timestamp"))
		return time.Time{}, time.Time{}, false
	}
	if to, err = time.Parse(time.RFC3339, r.URL.Query().Get("to")); err != nil {
		writeError(w, apperror.ValidationFailed("to", "to must be an RFC 3339 timestamp"))
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// entryBody decodes and parses a manual-entry payload.
func entryBody(w http.ResponseWriter, r *http.Request) (start, end time.Time, ok bool) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badJSON(w)
		return time.Time{}, time.Time{}, false
	}

	var err error
	if start, err = time.Parse(time.RFC3339, req.StartAt); err != nil {
		writeError(w, apperror.ValidationFailed("startAt", "startAt must be an RFC 3339 timestamp"))
		return time.Time{}, time.Time{}, false
	}
	if end, err = time.Parse(time.RFC3339, req.EndAt); err != nil {
		writeError(w, apperror.ValidationFailed("endAt", "endAt must be an RFC 3339 timestamp"))
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
