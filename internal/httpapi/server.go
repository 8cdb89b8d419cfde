package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/clock"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/service"
	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/store"
)

const (
	defaultEventLimit = 10
	maxEventLimit     = 100
)

type Dependencies struct {
	Logger *slog.Logger
	Addr   string
	Events store.EventReader
	Clock  *clock.Clock
	Health *service.Health
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	router     chi.Router
	events     store.EventReader
	clock      *clock.Clock
	health     *service.Health
}

func NewServer(d Dependencies) *Server {
	r := chi.NewRouter()

	s := &Server{
		logger: d.Logger,
		router: r,
		events: d.Events,
		clock:  d.Clock,
		health: d.Health,
	}

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.Use(recoverMiddleware(d.Logger))
	r.Use(loggingMiddleware(d.Logger))

	r.Get("/", s.handleDashboard)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Route("/v1", func(r chi.Router) {
		r.Get("/events", s.handleEvents)
		r.Get("/stats", s.handleStats)
	})

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxEventLimit {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	views, err := s.events.RecentEvents(r.Context(), limit)
	if err != nil {
		s.storeError(w, r, "recent events", err)
		return
	}

	out := make([]eventJSON, 0, len(views))
	for _, v := range views {
		out = append(out, eventToJSON(v))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.events.Stats(r.Context(), s.clock.Today())
	if err != nil {
		s.storeError(w, r, "stats", err)
		return
	}

	if wantsProtobuf(r) {
		msg, err := statsToProto(stats)
		if err != nil {
			s.logger.Error("stats encode failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
			return
		}
		writeProto(w, http.StatusOK, msg)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	subscribed, storeUp := s.health.Snapshot()
	resp := healthJSON{Status: "ok", Subscribed: subscribed, StoreUp: storeUp}

	status := http.StatusOK
	if !subscribed || !storeUp {
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (s *Server) storeError(w http.ResponseWriter, r *http.Request, what string, err error) {
	s.logger.Error(what+" query failed", "path", r.URL.Path, "err", err)
	if errors.Is(err, store.ErrUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "attendance log is unavailable")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
}
