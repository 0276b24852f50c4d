package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/tally/internal/metrics"
	"github.com/dukerupert/tally/internal/model"
	"github.com/dukerupert/tally/internal/store"
	ws "github.com/dukerupert/tally/internal/websocket"
)

type AssignmentHandler struct {
	assignments *store.AssignmentStore
	now         func() time.Time
	hub         Broadcaster
	logger      *slog.Logger
}

func NewAssignmentHandler(as *store.AssignmentStore, now func() time.Time, hub Broadcaster, logger *slog.Logger) *AssignmentHandler {
	if now == nil {
		now = time.Now
	}
	return &AssignmentHandler{assignments: as, now: now, hub: hub, logger: logger}
}

// assignmentRequest assigns one reward or punishment to several persons at once.
type assignmentRequest struct {
	PersonIDs []int64 `json:"personIds" validate:"required,min=1,max=100,unique,dive,gt=0"`
	ItemType  string  `json:"itemType" validate:"required,oneof=reward punishment"`
	ItemID    int64   `json:"itemId" validate:"required,gt=0"`
}

// Create inserts one row per person in a single transaction. A missing person
// or item fails the whole request.
func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, h.logger, err, "failed to create assignments")
		return
	}

	kind := model.ActionKind(req.ItemType)
	created, err := h.assignments.CreateBulk(r.Context(), req.PersonIDs, kind, req.ItemID, h.now())
	if err != nil {
		writeError(w, h.logger, err, "failed to create assignments")
		return
	}

	metrics.ObserveAssignments(req.ItemType, len(created), created[0].ItemValue)
	for _, a := range created {
		broadcast(h.hub, ws.EntityAssignment, ws.ActionCreated, a.ID, map[string]any{"personId": a.PersonID})
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAssignmentFilter(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if v := r.URL.Query().Get("personId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeMessage(w, http.StatusBadRequest, "personId must be a positive integer")
			return
		}
		filter.PersonID = id
	}

	assignments, err := h.assignments.List(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err, "failed to list assignments")
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Delete undoes a mistaken assignment.
func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := h.assignments.Delete(r.Context(), a.ID); err != nil {
		writeError(w, h.logger, err, "failed to delete assignment")
		return
	}

	broadcast(h.hub, ws.EntityAssignment, ws.ActionDeleted, a.ID, map[string]any{"personId": a.PersonID})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AssignmentHandler) lookup(w http.ResponseWriter, r *http.Request) (*model.Assignment, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	a, err := h.assignments.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err, "failed to get assignment")
		return nil, false
	}
	if a == nil {
		writeMessage(w, http.StatusNotFound, "assignment not found")
		return nil, false
	}
	return a, true
}

// parseAssignmentFilter reads itemType, from, to and limit from the query string.
func parseAssignmentFilter(r *http.Request) (model.AssignmentFilter, error) {
	var f model.AssignmentFilter
	q := r.URL.Query()

	if v := q.Get("itemType"); v != "" {
		f.ItemType = model.ActionKind(v)
		if !f.ItemType.Valid() {
			return f, errors.New("itemType must be reward or punishment")
		}
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errors.New("from must be an RFC 3339 timestamp")
		}
		f.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errors.New("to must be an RFC 3339 timestamp")
		}
		f.To = t
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return f, errors.New("from must be before to")
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return f, errors.New("limit must be a positive integer")
		}
		f.Limit = n
	}
	return f, nil
}
