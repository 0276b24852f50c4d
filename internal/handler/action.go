package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/tally/internal/model"
	"github.com/dukerupert/tally/internal/store"
	ws "github.com/dukerupert/tally/internal/websocket"
	"github.com/go-playground/validator/v10"
)

// ActionHandler serves one kind of action: /api/rewards or /api/punishments.
// Every lookup is scoped to the handler's kind.
type ActionHandler struct {
	kind    model.ActionKind
	actions *store.ActionStore
	hub     Broadcaster
	logger  *slog.Logger
}

func NewActionHandler(kind model.ActionKind, as *store.ActionStore, hub Broadcaster, logger *slog.Logger) *ActionHandler {
	return &ActionHandler{kind: kind, actions: as, hub: hub, logger: logger}
}

type actionRequest struct {
	Kind  model.ActionKind `json:"-"`
	Name  string           `json:"name" validate:"required,max=100"`
	Value *int             `json:"value" validate:"required"`
}

func (req *actionRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
}

// validateActionSign rejects rewards that are not positive and punishments
// that are not negative.
func validateActionSign(sl validator.StructLevel) {
	req := sl.Current().Interface().(actionRequest)
	if req.Value == nil || req.Kind.AllowsValue(*req.Value) {
		return
	}
	tag := "gt"
	if req.Kind == model.KindPunishment {
		tag = "lt"
	}
	sl.ReportError(*req.Value, "value", "Value", tag, "0")
}

func (h *ActionHandler) List(w http.ResponseWriter, r *http.Request) {
	actions, err := h.actions.List(r.Context(), h.kind)
	if err != nil {
		writeError(w, h.logger, err, "failed to list "+string(h.kind)+"s")
		return
	}
	if actions == nil {
		actions = []model.Action{}
	}
	writeJSON(w, http.StatusOK, actions)
}

func (h *ActionHandler) Create(w http.ResponseWriter, r *http.Request) {
	req := actionRequest{Kind: h.kind}
	if err := decode(w, r, &req); err != nil {
		writeError(w, h.logger, err, "failed to create "+string(h.kind))
		return
	}

	a, err := h.actions.Create(r.Context(), h.kind, req.Name, *req.Value)
	if err != nil {
		writeError(w, h.logger, err, "failed to create "+string(h.kind))
		return
	}

	broadcast(h.hub, string(h.kind), ws.ActionCreated, a.ID, nil)
	writeJSON(w, http.StatusCreated, a)
}

func (h *ActionHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Update changes the action itself. Assignments already made keep the name
// and value they were given.
func (h *ActionHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.lookup(w, r)
	if !ok {
		return
	}

	req := actionRequest{Kind: h.kind}
	if err := decode(w, r, &req); err != nil {
		writeError(w, h.logger, err, "failed to update "+string(h.kind))
		return
	}

	a, err := h.actions.Update(r.Context(), h.kind, existing.ID, req.Name, *req.Value)
	if err != nil {
		writeError(w, h.logger, err, "failed to update "+string(h.kind))
		return
	}
	if a == nil {
		writeMessage(w, http.StatusNotFound, string(h.kind)+" not found")
		return
	}

	broadcast(h.hub, string(h.kind), ws.ActionUpdated, a.ID, nil)
	writeJSON(w, http.StatusOK, a)
}

func (h *ActionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := h.actions.Delete(r.Context(), h.kind, existing.ID); err != nil {
		writeError(w, h.logger, err, "failed to delete "+string(h.kind))
		return
	}

	broadcast(h.hub, string(h.kind), ws.ActionDeleted, existing.ID, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ActionHandler) lookup(w http.ResponseWriter, r *http.Request) (*model.Action, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	a, err := h.actions.GetByID(r.Context(), h.kind, id)
	if err != nil {
		writeError(w, h.logger, err, "failed to get "+string(h.kind))
		return nil, false
	}
	if a == nil {
		writeMessage(w, http.StatusNotFound, string(h.kind)+" not found")
		return nil, false
	}
	return a, true
}

// ListActions serves the combined catalog, optionally filtered by ?kind=.
func ListActions(as *store.ActionStore, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := model.ActionKind(r.URL.Query().Get("kind"))
		if kind != "" && !kind.Valid() {
			writeMessage(w, http.StatusBadRequest, "kind must be reward or punishment")
			return
		}

		actions, err := as.List(r.Context(), kind)
		if err != nil {
			writeError(w, logger, err, "failed to list actions")
			return
		}
		if actions == nil {
			actions = []model.Action{}
		}
		writeJSON(w, http.StatusOK, actions)
	}
}
