package control

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/quietkey/autocorrectd/internal/ports"
)

type fakeEngine struct {
	enabled bool
	events  []ports.CorrectionEvent
}

func (f *fakeEngine) Enabled() bool                         { return f.enabled }
func (f *fakeEngine) SetEnabled(v bool)                     { f.enabled = v }
func (f *fakeEngine) RecentEvents() []ports.CorrectionEvent { return f.events }

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	keyPath := filepath.Join(t.TempDir(), "apikey")
	eng := &fakeEngine{enabled: true}
	srv, err := NewServer("127.0.0.1:0", eng, keyPath, "test")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv, srv.apiKey
}

func TestStatusRequiresAPIKey(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest("GET", "/api/status", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestStatusWithValidKey(t *testing.T) {
	srv, key := newTestServer(t)
	req := httptest.NewRequest("GET", "/api/status", nil)
	req.Header.Set("X-API-Key", key)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Enabled {
		t.Error("expected Enabled = true")
	}
}

func TestToggleFlipsEngineState(t *testing.T) {
	srv, key := newTestServer(t)
	body, _ := json.Marshal(toggleRequest{Enabled: false})
	req := httptest.NewRequest("POST", "/api/toggle", bytes.NewReader(body))
	req.Header.Set("X-API-Key", key)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Enabled {
		t.Error("expected Enabled = false after toggling off")
	}
}

func TestStatsReturnsRecentEvents(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "apikey")
	eng := &fakeEngine{enabled: true, events: []ports.CorrectionEvent{
		{Kind: ports.EventCorrected, Original: "teh", Replacement: "the"},
	}}
	srv, err := NewServer("127.0.0.1:0", eng, keyPath, "test")
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/stats", nil)
	req.Header.Set("X-API-Key", srv.apiKey)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	var resp statsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Events) != 1 || resp.Events[0].Original != "teh" {
		t.Errorf("events = %+v", resp.Events)
	}
}

func TestPublishFansOutToSubscribers(t *testing.T) {
	srv, _ := newTestServer(t)
	ch := srv.subscribe()
	defer srv.unsubscribe(ch)

	srv.Publish(ports.CorrectionEvent{Kind: ports.EventCorrected, Original: "teh"})

	select {
	case ev := <-ch:
		if ev.Original != "teh" {
			t.Errorf("event = %+v", ev)
		}
	default:
		t.Fatal("expected the published event to reach the subscriber channel")
	}
}
