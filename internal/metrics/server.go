// Package metrics provides a simple Prometheus-compatible metrics endpoint.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds runtime counters for the current promptforge process.
type Metrics struct {
	// Save operations
	ManualSaves atomic.Int64
	Autosaves   atomic.Int64
	StaleSaves  atomic.Int64

	// Generation calls
	GenerationCalls  atomic.Int64
	GenerationErrors atomic.Int64

	// Persistence
	PersistErrors atomic.Int64

	// Timing (last operation duration in ms)
	LastSaveDurationMs       atomic.Int64
	LastGenerationDurationMs atomic.Int64

	startTime time.Time
}

var (
	global     *Metrics
	globalOnce sync.Once
)

// Global returns the global metrics instance
func Global() *Metrics {
	globalOnce.Do(func() {
		global = &Metrics{
			startTime: time.Now(),
		}
	})
	return global
}

// RecordSave records a completed save operation.
func (m *Metrics) RecordSave(manual bool, durationMs int64) {
	if manual {
		m.ManualSaves.Add(1)
	} else {
		m.Autosaves.Add(1)
	}
	m.LastSaveDurationMs.Store(durationMs)
}

// RecordStaleSave records a save discarded because the active iteration moved.
func (m *Metrics) RecordStaleSave() {
	m.StaleSaves.Add(1)
}

// RecordGeneration records a generation call attempt.
func (m *Metrics) RecordGeneration(success bool, durationMs int64) {
	m.GenerationCalls.Add(1)
	if !success {
		m.GenerationErrors.Add(1)
	}
	m.LastGenerationDurationMs.Store(durationMs)
}

// RecordPersistError records a failed blob store write.
func (m *Metrics) RecordPersistError() {
	m.PersistErrors.Add(1)
}

// Handler returns an HTTP handler for /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")

		uptime := time.Since(m.startTime).Seconds()

		fmt.Fprintf(w, "# HELP promptforge_uptime_seconds Time since promptforge started\n")
		fmt.Fprintf(w, "# TYPE promptforge_uptime_seconds gauge\n")
		fmt.Fprintf(w, "promptforge_uptime_seconds %.2f\n\n", uptime)

		fmt.Fprintf(w, "# HELP promptforge_manual_saves_total Total manual save checkpoints\n")
		fmt.Fprintf(w, "# TYPE promptforge_manual_saves_total counter\n")
		fmt.Fprintf(w, "promptforge_manual_saves_total %d\n\n", m.ManualSaves.Load())

		fmt.Fprintf(w, "# HELP promptforge_autosaves_total Total silent autosaves\n")
		fmt.Fprintf(w, "# TYPE promptforge_autosaves_total counter\n")
		fmt.Fprintf(w, "promptforge_autosaves_total %d\n\n", m.Autosaves.Load())

		fmt.Fprintf(w, "# HELP promptforge_stale_saves_total Saves discarded after the active iteration moved\n")
		fmt.Fprintf(w, "# TYPE promptforge_stale_saves_total counter\n")
		fmt.Fprintf(w, "promptforge_stale_saves_total %d\n\n", m.StaleSaves.Load())

		fmt.Fprintf(w, "# HELP promptforge_generation_calls_total Total generation service calls\n")
		fmt.Fprintf(w, "# TYPE promptforge_generation_calls_total counter\n")
		fmt.Fprintf(w, "promptforge_generation_calls_total %d\n\n", m.GenerationCalls.Load())

		fmt.Fprintf(w, "# HELP promptforge_generation_errors_total Total failed generation calls\n")
		fmt.Fprintf(w, "# TYPE promptforge_generation_errors_total counter\n")
		fmt.Fprintf(w, "promptforge_generation_errors_total %d\n\n", m.GenerationErrors.Load())

		fmt.Fprintf(w, "# HELP promptforge_persist_errors_total Total failed blob store writes\n")
		fmt.Fprintf(w, "# TYPE promptforge_persist_errors_total counter\n")
		fmt.Fprintf(w, "promptforge_persist_errors_total %d\n\n", m.PersistErrors.Load())

		fmt.Fprintf(w, "# HELP promptforge_last_save_duration_ms Last save duration\n")
		fmt.Fprintf(w, "# TYPE promptforge_last_save_duration_ms gauge\n")
		fmt.Fprintf(w, "promptforge_last_save_duration_ms %d\n\n", m.LastSaveDurationMs.Load())

		fmt.Fprintf(w, "# HELP promptforge_last_generation_duration_ms Last generation call duration\n")
		fmt.Fprintf(w, "# TYPE promptforge_last_generation_duration_ms gauge\n")
		fmt.Fprintf(w, "promptforge_last_generation_duration_ms %d\n", m.LastGenerationDurationMs.Load())
	}
}

// Server wraps the metrics HTTP server
type Server struct {
	srv *http.Server
}

// NewServer creates a metrics server on the given port
func NewServer(port int) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", Global().Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}
}

// Start starts the metrics server in background
func (s *Server) Start() error {
	go s.srv.ListenAndServe()
	return nil
}

// Stop gracefully shuts down the metrics server
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
