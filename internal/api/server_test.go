package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/roadpulse/roadpulse/internal/enrich"
	"github.com/roadpulse/roadpulse/internal/scheduler"
)

func TestHealthAndStatus(t *testing.T) {
	sched := scheduler.New(nil, nil, nil, enrich.NewEngine(time.UTC), nil, time.Minute)
	app := New(sched)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/status", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var status scheduler.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	if status.CyclesRun != 0 {
		t.Errorf("CyclesRun = %d, want 0", status.CyclesRun)
	}
}
