package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-services-client/internal/config"
	"github.com/samvad-hq/samvad-services-client/internal/domain"
	"github.com/samvad-hq/samvad-services-client/pkg/publishers"
)

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	return &config.Config{
		APIBaseURL:             baseURL,
		StorageType:            "bbolt",
		BBoltPath:              filepath.Join(t.TempDir(), "outcomes.db"),
		StorageTTL:             time.Hour,
		StorageCleanupInterval: time.Hour,
		WatchInterval:          time.Minute,
	}
}

func TestFetchOnceRecordsAndPublishes(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer api.Close()

	var mu sync.Mutex
	var events []publishers.Event
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt publishers.Event
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			t.Errorf("decode event: %v", err)
		}
		mu.Lock()
		events = append(events, evt)
		mu.Unlock()
	}))
	defer sink.Close()

	pubFile := filepath.Join(t.TempDir(), "publishers.yaml")
	raw := "publishers:\n  - id: hook\n    type: http\n    http:\n      url: " + sink.URL + "\n"
	if err := os.WriteFile(pubFile, []byte(raw), 0o644); err != nil {
		t.Fatalf("write publishers file: %v", err)
	}

	cfg := testConfig(t, api.URL)
	cfg.PublishersFile = pubFile

	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	o, err := a.FetchOnce(context.Background())
	if err != nil {
		t.Fatalf("FetchOnce: %v", err)
	}
	if o.Message() != "ok" {
		t.Fatalf("message = %q", o.Message())
	}

	history, err := a.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].FetchID != o.FetchID || history[0].Message != "ok" {
		t.Fatalf("unexpected history %#v", history)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 || events[0].FetchID != o.FetchID || !events[0].OK {
		t.Fatalf("unexpected published events %#v", events)
	}
	if events[0].Source != api.URL+"/services" {
		t.Fatalf("event source = %q", events[0].Source)
	}
}

func TestFetchOnceFailureIsAnOutcomeNotAnError(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer api.Close()

	a, err := New(context.Background(), testConfig(t, api.URL), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	o, err := a.FetchOnce(context.Background())
	if err != nil {
		t.Fatalf("FetchOnce: %v", err)
	}
	if want := "Error fetching services: API call failed with status code 500"; o.Message() != want {
		t.Fatalf("message = %q, want %q", o.Message(), want)
	}
}

func TestWatchTriggersRepeatedly(t *testing.T) {
	var hits atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"message":"tick"}`))
	}))
	defer api.Close()

	cfg := testConfig(t, api.URL)
	cfg.StorageType = "none"
	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	seen := make(chan domain.Outcome, 16)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Watch(ctx, 20*time.Millisecond, func(o domain.Outcome) {
			select {
			case seen <- o:
			default:
			}
		})
	}()

	for i := 0; i < 3; i++ {
		select {
		case o := <-seen:
			if o.Message() != "tick" {
				t.Fatalf("message = %q", o.Message())
			}
		case <-time.After(3 * time.Second):
			t.Fatalf("timed out waiting for watch outcome %d", i)
		}
	}
	cancel()

	if err := <-errCh; err != nil {
		t.Fatalf("Watch returned %v", err)
	}
	if hits.Load() < 3 {
		t.Fatalf("expected at least 3 requests, got %d", hits.Load())
	}
}

func TestWatchRejectsNonPositiveInterval(t *testing.T) {
	cfg := testConfig(t, "http://localhost:1")
	cfg.StorageType = "none"
	a, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if err := a.Watch(context.Background(), 0, nil); err == nil {
		t.Fatalf("expected error for zero interval")
	}
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	if _, err := New(context.Background(), testConfig(t, "not a url"), nil); err == nil {
		t.Fatalf("expected error for invalid base url")
	}
	if _, err := New(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
