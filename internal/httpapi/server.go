// Package httpapi mounts the ambient observability surface (/healthz and
// /metrics) every MAPE-K process exposes alongside its MQTT loop, in the
// teacher's gorilla/mux + gorilla/handlers style (services/mape/execute,
// services/ledger internal/api routers).
package httpapi

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"poultrymapek/internal/metrics"
)

// HealthFunc reports whether the process considers itself healthy, and a
// short reason when it does not (e.g. "broker disconnected").
type HealthFunc func() (ok bool, reason string)

// Server is the minimal HTTP surface a component binds for operators and
// Prometheus scraping. It never carries a config-mutation endpoint (the
// platform has no HTTP config service; see SPEC_FULL.md).
type Server struct {
	addr string
	log  *slog.Logger
	srv  *http.Server
}

// New builds a router with /healthz and /metrics, wrapped in
// gorilla/handlers' request logger the same way execute's main.go does.
func New(addr string, m *metrics.Metrics, health HealthFunc, log *slog.Logger) *Server {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", healthHandler(health)).Methods("GET")
	r.Handle("/metrics", m.Handler()).Methods("GET")

	logged := handlers.LoggingHandler(os.Stdout, r)
	return &Server{
		addr: addr,
		log:  log,
		srv:  &http.Server{Addr: addr, Handler: logged},
	}
}

func healthHandler(health HealthFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health == nil {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		ok, reason := health()
		if !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(reason))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// Start runs the server in a background goroutine and logs a fatal-adjacent
// warning (not a process exit — the MQTT loop is the primary duty) if it
// stops unexpectedly.
func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("http server stopped", "addr", s.addr, "error", err)
		}
	}()
	s.log.Info("http surface listening", "addr", s.addr)
}

// Close shuts the server down, for process cleanup.
func (s *Server) Close() error {
	return s.srv.Close()
}
