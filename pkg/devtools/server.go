package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/faultline/pkg/host"
)

// Default paths served by Server.
const (
	DefaultAddr        = "localhost:7070"
	DefaultOverlayPath = "/_faultline/overlay"
	MetricsPath        = "/metrics"
	ReportsPath        = "/api/reports"
	HealthPath         = "/healthz"
)

// Config configures the devtools server.
type Config struct {
	// Addr is the listen address (default: DefaultAddr).
	Addr string

	// OverlayPath is the WebSocket path (default: DefaultOverlayPath).
	OverlayPath string

	// Logger receives server logs (default: slog.Default()).
	Logger *slog.Logger
}

// Server exposes the overlay, metrics and recent reports over HTTP.
type Server struct {
	cfg      Config
	overlay  *Overlay
	recorder *host.Recorder
	gatherer prometheus.Gatherer
	router   chi.Router
	http     *http.Server
	logger   *slog.Logger
}

// NewServer builds the devtools router. Any of overlay, recorder and
// gatherer may be nil; the matching route is then not mounted.
func NewServer(cfg Config, overlay *Overlay, recorder *host.Recorder, gatherer prometheus.Gatherer) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.OverlayPath == "" {
		cfg.OverlayPath = DefaultOverlayPath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		overlay:  overlay,
		recorder: recorder,
		gatherer: gatherer,
		logger:   logger.With("component", "devtools"),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if overlay != nil {
		r.Get(cfg.OverlayPath, overlay.HandleWebSocket)
	}
	if recorder != nil {
		r.Get(ReportsPath, s.handleReports)
	}
	if gatherer != nil {
		r.Handle(MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	s.router = r
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, for mounting into another router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("devtools listening", "addr", s.cfg.Addr, "overlay", s.cfg.OverlayPath)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown closes overlay connections and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.overlay != nil {
		s.overlay.Close()
	}
	return s.http.Shutdown(ctx)
}

type reportsResponse struct {
	Total   uint64        `json:"total"`
	Reports []host.Report `json:"reports"`
}

func (s *Server) handleReports(w http.ResponseWriter, _ *http.Request) {
	resp := reportsResponse{
		Total:   s.recorder.Total(),
		Reports: s.recorder.Reports(),
	}
	if resp.Reports == nil {
		resp.Reports = []host.Report{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn("encode reports failed", "error", err)
	}
}
