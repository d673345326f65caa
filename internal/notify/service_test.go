package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/FildCommander/ytptube/pkg/types"
)

func serviceWithTarget(t *testing.T, targetURL string, on ...string) *Service {
	t.Helper()
	if on == nil {
		on = []string{}
	}
	path := filepath.Join(t.TempDir(), "notifications.json")
	svc := NewService(Options{File: path}, zerolog.Nop())
	if err := svc.Replace([]types.Target{{
		ID:      testUUID,
		Name:    "test target",
		On:      on,
		Request: types.TargetRequest{Type: "json", Method: "POST", URL: targetURL},
	}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	return svc
}

func drain(t *testing.T, svc *Service) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := svc.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestService_LoadsTargetsOnConstruction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.json")
	data := `[{"id": "` + testUUID + `", "name": "boot", "request": {"url": "http://a"}}]`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	svc := NewService(Options{File: path}, zerolog.Nop())
	if got := svc.Targets(); len(got) != 1 || got[0].Name != "boot" {
		t.Fatalf("targets: %+v", got)
	}
}

func TestService_EmitDeliversInBackground(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	svc := serviceWithTarget(t, srv.URL)
	svc.Emit("completed", MapPayload{"id": "x"})
	drain(t, svc)
	if hits.Load() != 1 {
		t.Fatalf("hits=%d", hits.Load())
	}
}

func TestService_EmitUnknownEventIsNoop(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	svc := serviceWithTarget(t, srv.URL)
	svc.Emit("definitely_not_an_event", MapPayload{"id": "x"})
	drain(t, svc)
	if hits.Load() != 0 {
		t.Fatalf("hits=%d", hits.Load())
	}
}

func TestService_EmitWithoutTargetsIsNoop(t *testing.T) {
	svc := NewService(Options{File: filepath.Join(t.TempDir(), "notifications.json")}, zerolog.Nop())
	svc.Emit("completed", MapPayload{"id": "x"})
	drain(t, svc)
}

func TestService_TestReachesFilteredTargets(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	// Subscribed to completed only, but the connectivity check bypasses it.
	svc := serviceWithTarget(t, srv.URL, "completed")
	svc.Test()
	drain(t, svc)
	if hits.Load() != 1 {
		t.Fatalf("hits=%d", hits.Load())
	}
}

func TestService_ConvenienceEmitters(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	svc := serviceWithTarget(t, srv.URL)
	svc.Added(types.Item{ID: "a"})
	svc.Completed(types.Item{ID: "a"})
	svc.Cancelled(types.Item{ID: "a"})
	svc.Cleared(nil)
	svc.Error("boom", nil)
	svc.Info("hello", map[string]any{"k": "v"})
	svc.Success("done", nil)
	drain(t, svc)
	if hits.Load() != 7 {
		t.Fatalf("hits=%d", hits.Load())
	}
}

func TestService_CloseHonorsDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	svc := serviceWithTarget(t, srv.URL)
	svc.Emit("completed", MapPayload{"id": "x"})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := svc.Close(ctx); err == nil {
		t.Fatalf("expected deadline error")
	}
}

func TestService_ReloadIsIdempotent(t *testing.T) {
	svc := serviceWithTarget(t, "http://example.com")
	if err := svc.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := svc.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := svc.Targets(); len(got) != 1 {
		t.Fatalf("targets=%d", len(got))
	}
}
