package notify

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"

	"github.com/FildCommander/ytptube/pkg/types"
)

func writeTargetsFile(t *testing.T, entries string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notifications.json")
	if err := os.WriteFile(path, []byte(entries), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestStore_LoadSkipsInvalidEntries(t *testing.T) {
	// First and third entries are valid; the middle ones are not.
	path := writeTargetsFile(t, `[
		{"id": "`+testUUID+`", "name": "first", "request": {"url": "http://a"}},
		{"id": "not-a-uuid", "name": "bad id", "request": {"url": "http://b"}},
		{"id": "0a8b2a8e-7c4e-49f3-9a64-1c6f297adf01", "name": "bad on", "on": "completed", "request": {"url": "http://c"}},
		{"id": "0a8b2a8e-7c4e-49f3-9a64-1c6f297adf01", "name": "third", "on": ["completed"], "request": {"url": "http://d"}}
	]`)
	s := NewStore(path, zerolog.Nop())
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := s.Targets()
	if len(got) != 2 {
		t.Fatalf("expected 2 targets, got %d: %+v", len(got), got)
	}
	// File order preserved.
	if got[0].Name != "first" || got[1].Name != "third" {
		t.Fatalf("order: %q, %q", got[0].Name, got[1].Name)
	}
}

func TestStore_LoadNearEmptyFile(t *testing.T) {
	path := writeTargetsFile(t, "[]")
	s := NewStore(path, zerolog.Nop())
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if n := s.Count(); n != 0 {
		t.Fatalf("count=%d", n)
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing.json"), zerolog.Nop())
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if n := s.Count(); n != 0 {
		t.Fatalf("count=%d", n)
	}
}

func TestStore_LoadReplacesPriorList(t *testing.T) {
	path := writeTargetsFile(t, `[{"id": "`+testUUID+`", "name": "only", "request": {"url": "http://a"}}]`)
	s := NewStore(path, zerolog.Nop())
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := s.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n := s.Count(); n != 1 {
		t.Fatalf("reload must replace, not append: count=%d", n)
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notifications.json")
	s := NewStore(path, zerolog.Nop())

	want := types.Target{
		ID:   testUUID,
		Name: "round trip",
		On:   []string{"completed", "error"},
		Request: types.TargetRequest{
			Type:   "form",
			Method: "PUT",
			URL:    "http://example.com/hook",
			Headers: []types.TargetRequestHeader{
				{Key: "X-Token", Value: "abc"},
			},
		},
	}
	s.Save([]types.Target{want})
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := s.Targets()
	if len(got) != 1 {
		t.Fatalf("targets=%d", len(got))
	}
	gb, _ := json.Marshal(got[0])
	wb, _ := json.Marshal(want)
	if string(gb) != string(wb) {
		t.Fatalf("round trip mismatch:\n got %s\nwant %s", gb, wb)
	}
}

func TestStore_SaveSwallowsIOFailure(t *testing.T) {
	// Path inside a directory that does not exist; Save must not panic and
	// the failure stays in the logs.
	s := NewStore(filepath.Join(t.TempDir(), "missing", "notifications.json"), zerolog.Nop())
	s.Save([]types.Target{{ID: testUUID, Name: "x", Request: types.TargetRequest{URL: "http://a"}}})
}

func TestStore_TightensFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no unix permission bits on windows")
	}
	path := filepath.Join(t.TempDir(), "notifications.json")
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	NewStore(path, zerolog.Nop())
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := fi.Mode().Perm(); perm != 0o600 {
		t.Fatalf("perm=%o", perm)
	}
}

func TestStore_Clear(t *testing.T) {
	path := writeTargetsFile(t, `[{"id": "`+testUUID+`", "name": "only", "request": {"url": "http://a"}}]`)
	s := NewStore(path, zerolog.Nop())
	if err := s.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	s.Clear()
	if n := s.Count(); n != 0 {
		t.Fatalf("count=%d", n)
	}
}
