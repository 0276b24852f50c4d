package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/tally/internal/model"
	"github.com/dukerupert/tally/internal/store"
	ws "github.com/dukerupert/tally/internal/websocket"
)

// WeekFunc returns the current weekly score window.
type WeekFunc func() (start, end time.Time)

type PersonHandler struct {
	persons     *store.PersonStore
	assignments *store.AssignmentStore
	scores      *store.ScoreStore
	week        WeekFunc
	hub         Broadcaster
	logger      *slog.Logger
}

func NewPersonHandler(ps *store.PersonStore, as *store.AssignmentStore, ss *store.ScoreStore, week WeekFunc, hub Broadcaster, logger *slog.Logger) *PersonHandler {
	return &PersonHandler{persons: ps, assignments: as, scores: ss, week: week, hub: hub, logger: logger}
}

type personRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (req *personRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
}

func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	persons, err := h.persons.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "failed to list persons")
		return
	}
	if persons == nil {
		persons = []model.Person{}
	}
	writeJSON(w, http.StatusOK, persons)
}

func (h *PersonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, h.logger, err, "failed to create person")
		return
	}

	p, err := h.persons.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, h.logger, err, "failed to create person")
		return
	}

	broadcast(h.hub, ws.EntityPerson, ws.ActionCreated, p.ID, nil)
	writeJSON(w, http.StatusCreated, p)
}

func (h *PersonHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PersonHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req personRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, h.logger, err, "failed to update person")
		return
	}

	p, err := h.persons.Update(r.Context(), existing.ID, req.Name)
	if err != nil {
		writeError(w, h.logger, err, "failed to update person")
		return
	}
	if p == nil {
		writeMessage(w, http.StatusNotFound, "person not found")
		return
	}

	broadcast(h.hub, ws.EntityPerson, ws.ActionUpdated, p.ID, nil)
	writeJSON(w, http.StatusOK, p)
}

func (h *PersonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := h.persons.Delete(r.Context(), existing.ID); err != nil {
		writeError(w, h.logger, err, "failed to delete person")
		return
	}

	broadcast(h.hub, ws.EntityPerson, ws.ActionDeleted, existing.ID, nil)
	w.WriteHeader(http.StatusNoContent)
}

// Assignments lists one person's assignment history, newest first. It accepts
// the same query filters as the assignment listing except personId.
func (h *PersonHandler) Assignments(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookup(w, r)
	if !ok {
		return
	}

	filter, err := parseAssignmentFilter(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.PersonID = p.ID

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

func (h *PersonHandler) Score(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	start, end := h.week()
	score, err := h.scores.Get(r.Context(), id, start, end)
	if err != nil {
		writeError(w, h.logger, err, "failed to get score")
		return
	}
	if score == nil {
		writeMessage(w, http.StatusNotFound, "person not found")
		return
	}
	writeJSON(w, http.StatusOK, score)
}

// lookup resolves the {id} path value to a person, writing the error
// response itself when it cannot.
func (h *PersonHandler) lookup(w http.ResponseWriter, r *http.Request) (*model.Person, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	p, err := h.persons.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err, "failed to get person")
		return nil, false
	}
	if p == nil {
		writeMessage(w, http.StatusNotFound, "person not found")
		return nil, false
	}
	return p, true
}
