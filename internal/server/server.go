package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/tally/internal/handler"
	"github.com/dukerupert/tally/internal/metrics"
	"github.com/dukerupert/tally/internal/middleware"
	"github.com/dukerupert/tally/internal/model"
	"github.com/dukerupert/tally/internal/score"
	"github.com/dukerupert/tally/internal/store"
	ws "github.com/dukerupert/tally/internal/websocket"
	"github.com/jmoiron/sqlx"
)

// Options configures the HTTP surface. Zero values disable the optional parts:
// no token check, no CORS headers, no rate limit.
type Options struct {
	Location     *time.Location
	APITokenHash string
	CORSOrigins  []string
	RateLimit    int // mutating requests per minute per client IP
	ClientIP     *middleware.ClientIP
	Now          func() time.Time
}

type Server struct {
	db          *sqlx.DB
	hub         *ws.Hub
	opts        Options
	personH     *handler.PersonHandler
	rewardH     *handler.ActionHandler
	punishmentH *handler.ActionHandler
	assignmentH *handler.AssignmentHandler
	scoreH      *handler.ScoreHandler
	actions     http.HandlerFunc
	rateLimiter *middleware.RateLimiter
	clientIP    *middleware.ClientIP
	logger      *slog.Logger
}

func New(db *sqlx.DB, opts Options, logger *slog.Logger) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	hub := ws.NewHub(logger.With("component", "websocket"), metrics.SetWebSocketClients)

	personStore := store.NewPersonStore(db)
	actionStore := store.NewActionStore(db)
	assignmentStore := store.NewAssignmentStore(db)
	scoreStore := store.NewScoreStore(db)

	week := func() (time.Time, time.Time) {
		return score.WeekWindow(opts.Now(), opts.Location)
	}

	return &Server{
		db:          db,
		hub:         hub,
		opts:        opts,
		personH:     handler.NewPersonHandler(personStore, assignmentStore, scoreStore, week, hub, logger.With("component", "person")),
		rewardH:     handler.NewActionHandler(model.KindReward, actionStore, hub, logger.With("component", "reward")),
		punishmentH: handler.NewActionHandler(model.KindPunishment, actionStore, hub, logger.With("component", "punishment")),
		assignmentH: handler.NewAssignmentHandler(assignmentStore, opts.Now, hub, logger.With("component", "assignment")),
		scoreH:      handler.NewScoreHandler(scoreStore, week, logger.With("component", "score")),
		actions:     handler.ListActions(actionStore, logger.With("component", "action")),
		rateLimiter: middleware.NewRateLimiter(opts.RateLimit, time.Minute),
		clientIP:    opts.ClientIP,
		logger:      logger,
	}
}

// Hub is exposed so the caller can disconnect clients on shutdown.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.opts.CORSOrigins, s.logger.With("component", "websocket")))

	s.registerAPIRoutes(mux)

	var h http.Handler = mux
	h = middleware.RequireToken(s.opts.APITokenHash)(h)
	h = middleware.LimitMutations(s.rateLimiter, s.clientIP)(h)
	h = middleware.CORS(s.opts.CORSOrigins)(h)
	h = metrics.InstrumentHandler(h)
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	return middleware.RequestID(h)
}

func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/persons", s.personH.List)
	mux.HandleFunc("POST /api/persons", s.personH.Create)
	mux.HandleFunc("GET /api/persons/{id}", s.personH.Get)
	mux.HandleFunc("PUT /api/persons/{id}", s.personH.Update)
	mux.HandleFunc("DELETE /api/persons/{id}", s.personH.Delete)
	mux.HandleFunc("GET /api/persons/{id}/assignments", s.personH.Assignments)
	mux.HandleFunc("GET /api/persons/{id}/score", s.personH.Score)

	for prefix, h := range map[string]*handler.ActionHandler{
		"/api/rewards":     s.rewardH,
		"/api/punishments": s.punishmentH,
	} {
		mux.HandleFunc("GET "+prefix, h.List)
		mux.HandleFunc("POST "+prefix, h.Create)
		mux.HandleFunc("GET "+prefix+"/{id}", h.Get)
		mux.HandleFunc("PUT "+prefix+"/{id}", h.Update)
		mux.HandleFunc("DELETE "+prefix+"/{id}", h.Delete)
	}
	mux.HandleFunc("GET /api/actions", s.actions)

	mux.HandleFunc("POST /api/assignments", s.assignmentH.Create)
	mux.HandleFunc("GET /api/assignments", s.assignmentH.List)
	mux.HandleFunc("GET /api/assignments/{id}", s.assignmentH.Get)
	mux.HandleFunc("DELETE /api/assignments/{id}", s.assignmentH.Delete)

	mux.HandleFunc("GET /api/scores", s.scoreH.List)
	mux.HandleFunc("GET /api/scores/weekly", s.scoreH.Weekly)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error("health check", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
