package watchdog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// HealthPath is the route served by the health endpoint.
const HealthPath = "/healthz"

const shutdownTimeout = 5 * time.Second

// HealthStatus is the body of a health response.
type HealthStatus struct {
	Status     string    `json:"status"`
	LastSeen   time.Time `json:"last_seen"`
	AgeSeconds float64   `json:"age_seconds"`
}

// HealthHandler reports the age of the last sign of life.
// It answers 200 while fresh and 503 once older than threshold.
func HealthHandler(l *Liveness, threshold time.Duration, now func() time.Time) http.Handler {
	if now == nil {
		now = time.Now
	}
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t := now()
		last := l.Last()
		status := HealthStatus{Status: "ok", LastSeen: last.UTC(), AgeSeconds: t.Sub(last).Seconds()}
		code := http.StatusOK
		if l.Stale(t, threshold) {
			status.Status = "stale"
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	})
}

// HealthServer serves HealthHandler until its context ends.
type HealthServer struct {
	addr    string
	handler http.Handler
	logger  *slog.Logger
}

// NewHealthServer creates a server for addr that uses the watchdog's
// liveness, threshold and clock.
func (w *Watchdog) NewHealthServer(addr string) *HealthServer {
	mux := http.NewServeMux()
	mux.Handle(HealthPath, HealthHandler(w.liveness, w.threshold, w.now))
	return &HealthServer{addr: addr, handler: mux, logger: w.logger}
}

// Run listens on the configured address and shuts down when ctx is done.
func (s *HealthServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("health endpoint: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln and shuts down when ctx is done.
func (s *HealthServer) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.logger.Info("health endpoint listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("health endpoint: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("health endpoint shutdown failed", "error", err)
	}
	return nil
}
