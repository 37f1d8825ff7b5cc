package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jakechorley/coffee-rota/pkg/auth"
	"github.com/jakechorley/coffee-rota/pkg/core/model"
	"github.com/jakechorley/coffee-rota/pkg/core/services"
	"github.com/jakechorley/coffee-rota/pkg/core/timerange"
	apperr "github.com/jakechorley/coffee-rota/pkg/errors"
)

type handlers struct {
	workflow Workflow
	badges   BadgeSource
	logger   *zap.Logger
}

type transitionFunc func(ctx context.Context, actor model.Actor, shiftID string) (model.Shift, error)

func (h *handlers) currentSession(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	s, ok := SessionFromContext(r.Context())
	if !ok {
		writeError(h.logger, w, r, apperr.New(apperr.CodeUnauthorized, "missing session"))
	}
	return s, ok
}

func (h *handlers) session(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	writeSuccess(w, sessionResponse{
		UserID:     s.UserID,
		FullName:   s.FullName,
		Role:       string(s.Role),
		Capability: s.Capability.String(),
	})
}

// transition adapts one swap or claim action to a POST /shifts/{shiftID}/<action> handler
func (h *handlers) transition(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := h.currentSession(w, r)
		if !ok {
			return
		}
		shift, err := fn(r.Context(), s.Actor(), chi.URLParam(r, "shiftID"))
		if err != nil {
			writeError(h.logger, w, r, err)
			return
		}
		writeSuccess(w, toShiftResponse(shift))
	}
}

func (h *handlers) createShift(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	var in services.CreateShiftInput
	if err := decodeJSONBody(r, &in); err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	shift, err := h.workflow.CreateShift(r.Context(), s.Actor(), in)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeSuccessStatus(w, http.StatusCreated, toShiftResponse(shift))
}

func (h *handlers) updateShift(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	var in services.UpdateShiftInput
	if err := decodeJSONBody(r, &in); err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	shift, err := h.workflow.UpdateShift(r.Context(), s.Actor(), chi.URLParam(r, "shiftID"), in)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeSuccess(w, toShiftResponse(shift))
}

func (h *handlers) deleteShift(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	if err := h.workflow.DeleteShift(r.Context(), s.Actor(), chi.URLParam(r, "shiftID")); err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) copyWeek(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	var req copyWeekRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	weekStart, err := h.workflow.Clock().Date(req.WeekStart)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	copies, err := h.workflow.CopyWeek(r.Context(), s.Actor(), chi.URLParam(r, "storeID"), weekStart)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeSuccessStatus(w, http.StatusCreated, toShiftResponses(copies))
}

func (h *handlers) listStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.workflow.ListStores(r.Context())
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	out := make([]storeResponse, len(stores))
	for i, st := range stores {
		out[i] = toStoreResponse(st)
	}
	writeSuccess(w, out)
}

func (h *handlers) updateStoreNotes(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	var req storeNotesRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	store, err := h.workflow.UpdateStoreNotes(r.Context(), s.Actor(), chi.URLParam(r, "storeID"), req.Notes)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeSuccess(w, toStoreResponse(store))
}

func (h *handlers) marketplace(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.workflow.ListMarketplace(r.Context(), r.URL.Query().Get("storeId"))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeSuccess(w, toShiftResponses(shifts))
}

func (h *handlers) approvals(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	shifts, err := h.workflow.PendingApprovals(r.Context(), s.Actor(), r.URL.Query().Get("storeId"))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeSuccess(w, toShiftResponses(shifts))
}

// badgeCounts serves the last refreshed counts. No data is a null payload, not an error.
func (h *handlers) badgeCounts(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	if h.badges == nil {
		writeSuccess(w, nil)
		return
	}
	counts, fresh := h.badges.Latest()
	if !fresh {
		writeSuccess(w, nil)
		return
	}
	if !s.Actor().IsManager() {
		counts.PendingApprovals = 0
	}
	writeSuccess(w, counts)
}

func (h *handlers) conflicts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := parseTimeParam(r, "start")
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	end, err := parseTimeParam(r, "end")
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	found, err := h.workflow.CheckConflict(r.Context(), q.Get("userId"), start, end, q.Get("excludeShiftId"))
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeSuccess(w, map[string]any{
		"conflict": len(found) > 0,
		"shifts":   toShiftResponses(found),
	})
}

func (h *handlers) listAvailability(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		userID = s.UserID
	}
	week, err := h.workflow.ListAvailability(r.Context(), s.Actor(), userID)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	out := make([]availabilityResponse, len(week))
	for i, a := range week {
		out[i] = toAvailabilityResponse(a)
	}
	writeSuccess(w, out)
}

func (h *handlers) setAvailability(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	var req availabilityRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	in := services.SetAvailabilityInput{
		UserID:      strings.TrimSpace(req.UserID),
		DayOfWeek:   req.DayOfWeek,
		IsAvailable: req.IsAvailable,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	if in.UserID == "" {
		in.UserID = s.UserID
	}
	saved, err := h.workflow.SetAvailability(r.Context(), s.Actor(), in)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	writeSuccess(w, toAvailabilityResponse(saved))
}

func (h *handlers) availabilityEditable(w http.ResponseWriter, r *http.Request) {
	s, ok := h.currentSession(w, r)
	if !ok {
		return
	}
	clock := h.workflow.Clock()
	today := h.workflow.Now()
	if raw := strings.TrimSpace(r.URL.Query().Get("day")); raw != "" {
		d, err := clock.Date(raw)
		if err != nil {
			writeError(h.logger, w, r, err)
			return
		}
		today = d
	}

	locked := h.workflow.LockedDays()
	days := make([]string, len(locked))
	for i, d := range locked {
		days[i] = string(d)
	}
	writeSuccess(w, editableResponse{
		Editable:   h.workflow.IsAvailabilityEditable(today, s.Actor()),
		Day:        clock.FormatLocal(today, timerange.DateLayout),
		LockedDays: days,
	})
}
