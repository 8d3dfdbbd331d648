package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mklimuk/rangefinder/lidar"
	"github.com/mklimuk/rangefinder/register"
	"github.com/mklimuk/rangefinder/snsctx"
)

//go:embed static/*
var staticFiles embed.FS

const RequestIDHeader = "X-Request-ID"

// Rangefinder is the sensor surface exposed over HTTP.
type Rangefinder interface {
	ReadDistance(ctx context.Context) (int, error)
	ReadVelocity(ctx context.Context) (int, error)
	Status(ctx context.Context) (lidar.Status, error)
}

type Config struct {
	Listen  string
	Version string
}

// Server serves sensor readings. Sensor access is serialised, so concurrent
// requests never interleave bus transactions.
type Server struct {
	config Config
	sensor Rangefinder
	mx     sync.Mutex
	mux    *http.ServeMux
	server *http.Server
}

func New(sensor Rangefinder, cfg Config) *Server {
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	s := &Server{
		config: cfg,
		sensor: sensor,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	s.server = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /distance", s.handleDistance)
	s.mux.HandleFunc("GET /velocity", s.handleVelocity)
	s.mux.HandleFunc("GET /status", s.handleStatus)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
}

// ServeHTTP tags every request with an ID and logs its outcome.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.New().String()
	}
	w.Header().Set(RequestIDHeader, id)
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	s.mux.ServeHTTP(rec, r.WithContext(snsctx.WithRequestID(r.Context(), id)))
	slog.Debug("request served", "id", id, "method", r.Method, "path", r.URL.Path,
		"status", rec.status, "duration", time.Since(start))
}

// ListenAndServe blocks until ctx is done or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "address", ln.Addr().String())
		errCh <- s.server.Serve(ln)
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	s.mx.Lock()
	cm, err := s.sensor.ReadDistance(r.Context())
	s.mx.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cm)
}

func (s *Server) handleVelocity(w http.ResponseWriter, r *http.Request) {
	s.mx.Lock()
	v, err := s.sensor.ReadVelocity(r.Context())
	s.mx.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mx.Lock()
	st, err := s.sensor.Status(r.Context())
	s.mx.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.config.Version,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	data, err := fs.ReadFile(staticFS, "index.html")
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

type errorBody struct {
	Error   register.Kind `json:"error"`
	Message string        `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	kind := register.KindOf(err)
	status := http.StatusInternalServerError
	if kind == register.KindTimeout {
		status = http.StatusGatewayTimeout
	}
	slog.Warn("sensor request failed", "kind", kind, "error", err)
	writeJSON(w, status, errorBody{Error: kind, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("could not encode response", "error", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
