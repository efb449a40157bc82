package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestRecorder_Exposition(t *testing.T) {
	t.Parallel()
	r := NewRecorder()
	r.ObserveTask("Aggressive", "completed", 120*time.Millisecond, 10000)
	r.ObserveTask("Very Conservative", "timed_out", 2*time.Second, 0)
	r.ObserveRun("partial", 2*time.Second)
	r.IncrementActiveRequests()
	r.ObserveRequest("/simulate", "200")

	body := scrape(t, r)
	for _, want := range []string{
		`mcsim_portfolio_tasks_total{portfolio="Aggressive",status="completed"} 1`,
		`mcsim_portfolio_tasks_total{portfolio="Very Conservative",status="timed_out"} 1`,
		`mcsim_trajectories_total 10000`,
		`mcsim_runs_total{outcome="partial"} 1`,
		`mcsim_active_requests 1`,
		`mcsim_requests_total{code="200",path="/simulate"} 1`,
		"mcsim_portfolio_task_duration_seconds_bucket",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition should contain %q", want)
		}
	}
}

func TestRecorder_Isolation(t *testing.T) {
	t.Parallel()
	a, b := NewRecorder(), NewRecorder()
	a.ObserveRun("success", time.Second)
	if strings.Contains(scrape(t, b), `mcsim_runs_total{outcome="success"}`) {
		t.Error("recorders should not share a registry")
	}
}

func TestRecorder_WriteToTextfile(t *testing.T) {
	t.Parallel()
	r := NewRecorder()
	r.ObserveTask("Income", "completed", time.Millisecond, 500)
	path := filepath.Join(t.TempDir(), "mcsim.prom")

	if err := r.WriteToTextfile(path); err != nil {
		t.Fatalf("WriteToTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "mcsim_trajectories_total 500") {
		t.Errorf("textfile missing trajectories counter:\n%s", data)
	}
}

func TestRecorder_NilIsSafe(t *testing.T) {
	t.Parallel()
	var r *Recorder
	r.ObserveTask("x", "failed", 0, 0)
	r.ObserveRun("failure", 0)
	r.IncrementActiveRequests()
	r.DecrementActiveRequests()
	r.ObserveRequest("/", "404")
	if err := r.WriteToTextfile(filepath.Join(t.TempDir(), "none.prom")); err != nil {
		t.Errorf("nil WriteToTextfile returned %v", err)
	}
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if rec.Code != http.StatusNotFound {
		t.Errorf("nil handler status = %d, want 404", rec.Code)
	}
}
