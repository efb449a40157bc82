package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/agbru/mcsim/internal/logging"
	"github.com/agbru/mcsim/internal/metrics"
	"github.com/agbru/mcsim/internal/orchestration"
	"github.com/agbru/mcsim/internal/simulation"
)

// Server timeouts.
const (
	ReadTimeout     = 10 * time.Second
	IdleTimeout     = 60 * time.Second
	ShutdownTimeout = 10 * time.Second
	// writeSlack is added to the largest budget for the write timeout.
	writeSlack = 5 * time.Second
)

// Config configures a Server.
type Config struct {
	Addr string
	// Portfolios are simulated when a request names none of its own.
	Portfolios []simulation.Portfolio
	// Defaults fill the parameters a request leaves out.
	Defaults simulation.Parameters
	// DefaultBudget applies when a request sets no timeout_ms.
	DefaultBudget time.Duration
	// Workers bounds the concurrent tasks of one request; 0 is unbounded.
	Workers  int
	Security SecurityConfig
}

// Server serves simulation requests.
type Server struct {
	cfg        Config
	logger     logging.Logger
	metrics    *metrics.Recorder
	httpServer *http.Server
}

// New returns a Server. A nil logger logs nothing; a nil recorder records
// nothing and /metrics answers 404.
func New(cfg Config, logger logging.Logger, recorder *metrics.Recorder) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Server{cfg: cfg, logger: logger, metrics: recorder}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: cfg.Security.MaxBudget + writeSlack,
		IdleTimeout:  IdleTimeout,
	}
	return s
}

// Handler returns the routed handler with the security and metrics
// middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	route := func(path string, h http.HandlerFunc) {
		mux.HandleFunc(path, SecurityMiddleware(s.cfg.Security, s.metricsMiddleware(h)))
	}
	route("/simulate", s.handleSimulate)
	route("/health", s.handleHealth)
	route("/metrics", s.handleMetrics)
	return mux
}

// ListenAndServe listens on the configured address and serves until ctx is
// canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled, then shuts down gracefully,
// letting in-flight simulations finish within ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.Serve(ln) }()
	s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// statusRecorder captures the response code for the metrics middleware.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next(rec, r)
		s.metrics.ObserveRequest(r.URL.Path, strconv.Itoa(rec.code))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	s.metrics.Handler().ServeHTTP(w, r)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req SimulateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.Security.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	plan, err := req.resolve(s.cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Debug("simulation request",
		logging.Int("portfolios", len(plan.portfolios)),
		logging.Int("iterations", plan.params.Iterations),
		logging.Duration("budget", plan.budget))

	report := orchestration.ExecuteSimulations(r.Context(), plan.portfolios, plan.params, orchestration.Options{
		Budget:    plan.budget,
		Workers:   s.cfg.Workers,
		WithStats: req.WithStats,
		Logger:    s.logger,
		Recorder:  s.metrics,
	}, orchestration.NullProgressReporter{}, io.Discard)

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	s.logger.Debug("method not allowed", logging.String("method", r.Method), logging.String("path", r.URL.Path))
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
