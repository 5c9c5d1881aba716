package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"plc-alarm-worker/internal/server"
	"plc-alarm-worker/internal/store"
)

type fakeViews struct {
	live    []store.LiveAlarm
	history []store.HistoryAlarm
	err     error
}

func (f *fakeViews) LiveAlarms(_ context.Context, _ time.Time) ([]store.LiveAlarm, error) {
	return f.live, f.err
}

func (f *fakeViews) HistoryAlarms(_ context.Context) ([]store.HistoryAlarm, error) {
	return f.history, f.err
}

type fakeAcker struct {
	acked []int64
	err   error
}

func (f *fakeAcker) Acknowledge(_ context.Context, id int64, _ int64) error {
	if f.err != nil {
		return f.err
	}
	f.acked = append(f.acked, id)
	return nil
}

func newTestServer(views *fakeViews, acker *fakeAcker) *httptest.Server {
	return httptest.NewServer(server.NewHandler(views, acker, zap.NewNop()))
}

func TestLiveEndpoint(t *testing.T) {
	views := &fakeViews{
		live: []store.LiveAlarm{
			{ID: 2, ActivationTime: "1970-01-01 00:00:01", InactivationTime: "", Level: 2, Name: "P101 AL fault"},
		},
	}
	srv := newTestServer(views, &fakeAcker{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/alarms/live")
	if err != nil {
		t.Fatalf("GET live failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var rows []store.LiveAlarm
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "P101 AL fault" {
		t.Errorf("Unexpected live rows: %+v", rows)
	}
	if rows[0].InactivationTime != "" {
		t.Errorf("Expected blank inactivation time, got %q", rows[0].InactivationTime)
	}
}

func TestHistoryEndpoint_EmptyIsJSONArray(t *testing.T) {
	srv := newTestServer(&fakeViews{}, &fakeAcker{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/alarms/history")
	if err != nil {
		t.Fatalf("GET history failed: %v", err)
	}
	defer resp.Body.Close()

	var rows []store.HistoryAlarm
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("Expected a JSON array for empty history: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected empty history, got %d rows", len(rows))
	}
}

func TestViewEndpoints_StoreErrorIs500(t *testing.T) {
	views := &fakeViews{err: errors.New("store unreachable")}
	srv := newTestServer(views, &fakeAcker{})
	defer srv.Close()

	for _, path := range []string{"/api/alarms/live", "/api/alarms/history"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("Expected 500 for %s on store error, got %d", path, resp.StatusCode)
		}
	}
}

func TestAcknowledgeEndpoint(t *testing.T) {
	acker := &fakeAcker{}
	srv := newTestServer(&fakeViews{}, acker)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/alarms/42/acknowledge", "application/json", nil)
	if err != nil {
		t.Fatalf("POST acknowledge failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
	if len(acker.acked) != 1 || acker.acked[0] != 42 {
		t.Errorf("Expected alarm 42 acknowledged, got %v", acker.acked)
	}
}

func TestAcknowledgeEndpoint_BadID(t *testing.T) {
	srv := newTestServer(&fakeViews{}, &fakeAcker{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/alarms/nope/acknowledge", "application/json", nil)
	if err != nil {
		t.Fatalf("POST acknowledge failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid id, got %d", resp.StatusCode)
	}
}

func TestAcknowledgeEndpoint_AlreadyAcknowledged(t *testing.T) {
	acker := &fakeAcker{err: errors.New("alarm 42 not found or already acknowledged")}
	srv := newTestServer(&fakeViews{}, acker)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/alarms/42/acknowledge", "application/json", nil)
	if err != nil {
		t.Fatalf("POST acknowledge failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409, got %d", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&fakeViews{}, &fakeAcker{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz failed: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}
