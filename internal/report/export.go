package report

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edsu/fedsup/internal/logging"
)

// HealthStatus is what /healthz returns. Populated by the supervisor via
// the status callback so this package stays decoupled from the loop.
type HealthStatus struct {
	SessionID  string `json:"session_id"`
	State      string `json:"state"`
	Iterations uint64 `json:"iterations"`
	Uptime     string `json:"uptime"`
}

// Exporter serves /metrics and /healthz. It is only constructed when a
// metrics address is configured; the default supervisor runs without it.
type Exporter struct {
	server    *http.Server
	log       *logging.Logger
	startTime time.Time
	status    func() HealthStatus
}

// NewExporter wires the metrics registry and health endpoint onto addr.
func NewExporter(addr string, m *Metrics, status func() HealthStatus, log *logging.Logger) *Exporter {
	registry := prometheus.NewRegistry()
	registry.MustRegister(NewCollector(m))

	e := &Exporter{
		log:       log,
		startTime: time.Now(),
		status:    status,
	}

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.HandleFunc("/healthz", e.handleHealth).Methods("GET")

	e.server = &http.Server{
		Addr:    addr,
		Handler: router,
	}
	return e
}

func (e *Exporter) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := e.status()
	st.Uptime = time.Since(e.startTime).Round(time.Second).String()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(st)
}

// Start begins serving in a background goroutine.
func (e *Exporter) Start() {
	e.log.Info("metrics listener starting", map[string]interface{}{"addr": e.server.Addr})
	go func() {
		if err := e.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// The loop must keep running even if the listener dies
			e.log.Error("metrics listener failed", map[string]interface{}{"error": err.Error()})
		}
	}()
}

// Shutdown stops the listener.
func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.server.Shutdown(ctx)
}
