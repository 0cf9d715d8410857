package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edsu/fedsup/internal/logging"
)

func testExporter(m *Metrics) *Exporter {
	status := func() HealthStatus {
		return HealthStatus{
			SessionID:  "sess",
			State:      "waiting",
			Iterations: 12,
		}
	}
	return NewExporter(":0", m, status, logging.NewLogger(logging.FATAL, false))
}

func TestHealthEndpoint(t *testing.T) {
	e := testExporter(&Metrics{})

	req := httptest.NewRequest("GET", "/healthz", nil)
	rr := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var st HealthStatus
	if err := json.Unmarshal(rr.Body.Bytes(), &st); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if st.SessionID != "sess" || st.State != "waiting" || st.Iterations != 12 {
		t.Errorf("unexpected health payload: %+v", st)
	}
	if st.Uptime == "" {
		t.Error("uptime missing")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := &Metrics{}
	m.IncrStarted()
	m.RecordResult(sampleResult(1))

	e := testExporter(m)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"fedsup_invocations_started_total 1",
		`fedsup_child_exits_total{outcome="failure"} 1`,
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("metrics output missing %q", metric)
		}
	}
}

func TestExporterShutdown(t *testing.T) {
	e := testExporter(&Metrics{})
	e.Start()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}
