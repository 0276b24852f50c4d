package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/tally/internal/model"
	"github.com/dukerupert/tally/internal/store"
)

type ScoreHandler struct {
	scores *store.ScoreStore
	week   WeekFunc
	logger *slog.Logger
}

func NewScoreHandler(ss *store.ScoreStore, week WeekFunc, logger *slog.Logger) *ScoreHandler {
	return &ScoreHandler{scores: ss, week: week, logger: logger}
}

// List returns every person's total and weekly score, highest total first.
func (h *ScoreHandler) List(w http.ResponseWriter, r *http.Request) {
	start, end := h.week()
	scores, err := h.scores.List(r.Context(), start, end, store.ByTotal)
	if err != nil {
		writeError(w, h.logger, err, "failed to list scores")
		return
	}
	if scores == nil {
		scores = []model.PersonScore{}
	}
	writeJSON(w, http.StatusOK, scores)
}

// Weekly returns the leaderboard for the current week, highest weekly score first.
func (h *ScoreHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	start, end := h.week()
	scores, err := h.scores.List(r.Context(), start, end, store.ByWeekly)
	if err != nil {
		writeError(w, h.logger, err, "failed to list weekly scores")
		return
	}
	if scores == nil {
		scores = []model.PersonScore{}
	}
	writeJSON(w, http.StatusOK, model.Leaderboard{WeekStart: start, WeekEnd: end, Scores: scores})
}
