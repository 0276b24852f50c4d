package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/tally/internal/database"
	"github.com/dukerupert/tally/internal/score"
	"github.com/dukerupert/tally/internal/store"
	ws "github.com/dukerupert/tally/internal/websocket"
	"github.com/stretchr/testify/require"
)

// testNow is a Wednesday in the week starting Monday 2026-10-19.
var testNow = time.Date(2026, 10, 21, 15, 0, 0, 0, time.UTC)

// recorder collects broadcast messages.
type recorder struct {
	mu   sync.Mutex
	msgs []ws.Message
}

func (r *recorder) Broadcast(msg ws.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.msgs))
	for i, m := range r.msgs {
		out[i] = m.Type
	}
	return out
}

type testEnv struct {
	persons     *PersonHandler
	rewards     *ActionHandler
	punishments *ActionHandler
	assignments *AssignmentHandler
	scores      *ScoreHandler
	actions     http.HandlerFunc
	hub         *recorder
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := &recorder{}
	week := func() (time.Time, time.Time) { return score.WeekWindow(testNow, time.UTC) }
	now := func() time.Time { return testNow }

	ps := store.NewPersonStore(db)
	as := store.NewActionStore(db)
	asg := store.NewAssignmentStore(db)
	ss := store.NewScoreStore(db)

	return &testEnv{
		persons:     NewPersonHandler(ps, asg, ss, week, hub, logger),
		rewards:     NewActionHandler("reward", as, hub, logger),
		punishments: NewActionHandler("punishment", as, hub, logger),
		assignments: NewAssignmentHandler(asg, now, hub, logger),
		scores:      NewScoreHandler(ss, week, logger),
		actions:     ListActions(as, logger),
		hub:         hub,
	}
}

// do calls h with an optional JSON body and {id} path value.
func do(t *testing.T, h http.HandlerFunc, method, target, id string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rd)
	if id != "" {
		req.SetPathValue("id", id)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}
