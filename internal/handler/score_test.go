package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/dukerupert/tally/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoresList(t *testing.T) {
	env := setupEnv(t)
	alice := createPerson(t, env, "Alice")
	bob := createPerson(t, env, "Bob")
	createPerson(t, env, "Carol")
	r := createAction(t, env.rewards, "Homework", 5)
	p := createAction(t, env.punishments, "Shouting", -3)
	assign(t, env, "reward", r.ID, alice.ID, bob.ID)
	assign(t, env, "reward", r.ID, bob.ID)
	assign(t, env, "punishment", p.ID, alice.ID)

	rec := do(t, env.scores.List, http.MethodGet, "/api/scores", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	scores := decodeBody[[]model.PersonScore](t, rec)

	require.Len(t, scores, 3)
	assert.Equal(t, model.PersonScore{PersonID: bob.ID, Name: "Bob", TotalScore: 10, WeeklyScore: 10}, scores[0])
	assert.Equal(t, model.PersonScore{PersonID: alice.ID, Name: "Alice", TotalScore: 2, WeeklyScore: 2}, scores[1])
	assert.Equal(t, "Carol", scores[2].Name)
	assert.Zero(t, scores[2].TotalScore)
}

func TestScoresWeekly(t *testing.T) {
	env := setupEnv(t)
	alice := createPerson(t, env, "Alice")
	createPerson(t, env, "Bob")
	r := createAction(t, env.rewards, "Homework", 5)
	assign(t, env, "reward", r.ID, alice.ID)

	rec := do(t, env.scores.Weekly, http.MethodGet, "/api/scores/weekly", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	board := decodeBody[model.Leaderboard](t, rec)

	assert.True(t, board.WeekStart.Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)), "start %v", board.WeekStart)
	assert.True(t, board.WeekEnd.Equal(time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC)), "end %v", board.WeekEnd)
	require.Len(t, board.Scores, 2)
	assert.Equal(t, "Alice", board.Scores[0].Name)
	assert.Equal(t, 5, board.Scores[0].WeeklyScore)
}

func TestScoresEmpty(t *testing.T) {
	env := setupEnv(t)

	rec := do(t, env.scores.List, http.MethodGet, "/api/scores", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
