package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/FildCommander/ytptube/pkg/types"
)

// minFileSize is the byte threshold below which the backing file is treated
// as holding no targets and parsing is skipped.
const minFileSize = 10

// Store owns the persisted list of notification targets. The in-memory list
// is an immutable snapshot swapped wholesale on Load/Clear, so in-flight
// fan-outs keep the slice they captured.
type Store struct {
	path string
	log  zerolog.Logger

	mu      sync.RWMutex
	targets []types.Target
}

// NewStore creates a Store backed by the given file. When the file exists
// with a permission mode other than owner read/write, the mode is tightened;
// target URLs and headers may embed secrets.
func NewStore(path string, log zerolog.Logger) *Store {
	s := &Store{
		path:    path,
		log:     log.With().Str("component", "notify.store").Logger(),
		targets: []types.Target{},
	}
	s.hardenFile()
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

func (s *Store) hardenFile() {
	fi, err := os.Stat(s.path)
	if err != nil || fi.Mode().Perm() == 0o600 {
		return
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		// Non-fatal: the store still works on filesystems without chmod.
		s.log.Warn().Err(err).Str("file", s.path).Msg("could not tighten permissions on targets file")
	}
}

// Targets returns a copy of the current target list.
func (s *Store) Targets() []types.Target {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Target(nil), s.targets...)
}

// snapshot returns the current list without copying; callers must not
// mutate it. Load and Clear replace the slice rather than rewriting it.
func (s *Store) snapshot() []types.Target {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.targets
}

// Count returns the number of configured targets.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.targets)
}

// Clear empties the in-memory target list. The backing file is untouched.
func (s *Store) Clear() {
	s.mu.Lock()
	s.targets = []types.Target{}
	s.mu.Unlock()
}

// Load rebuilds the target list from the backing file, replacing whatever
// was loaded before. Entries that fail validation are logged and skipped;
// one bad entry never aborts the rest. A missing or near-empty file loads
// zero targets. The returned error covers only an unreadable or undecodable
// file; the list is still replaced (emptied) in that case.
func (s *Store) Load() error {
	loaded := []types.Target{}
	defer func() {
		s.mu.Lock()
		s.targets = loaded
		s.mu.Unlock()
	}()

	fi, err := os.Stat(s.path)
	if err != nil || fi.Size() < minFileSize {
		return nil
	}

	b, err := os.ReadFile(s.path)
	if err != nil {
		s.log.Error().Err(err).Str("file", s.path).Msg("failed to read targets file")
		return fmt.Errorf("read targets file: %w", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(b, &entries); err != nil {
		s.log.Error().Err(err).Str("file", s.path).Msg("targets file is not a JSON array")
		return fmt.Errorf("parse targets file: %w", err)
	}

	for i, raw := range entries {
		var in TargetInput
		if err := json.Unmarshal(raw, &in); err != nil {
			s.log.Error().Err(err).Int("entry", i).Msg("skipping malformed target entry")
			continue
		}
		if err := Validate(in); err != nil {
			s.log.Error().Err(err).Int("entry", i).Msg("skipping invalid target entry")
			continue
		}
		t := Materialize(in)
		loaded = append(loaded, t)
		s.log.Info().
			Str("target", t.Name).
			Strs("on", t.On).
			Str("type", t.Request.Type).
			Msg("registered notification target")
	}

	return nil
}

// Save writes the full target list to the backing file as pretty-printed
// JSON, replacing prior content. Persistence is best-effort: failures are
// logged and swallowed, never surfaced to the caller.
func (s *Store) Save(targets []types.Target) {
	s.log.Info().Str("file", s.path).Int("targets", len(targets)).Msg("saving notification targets")
	b, err := json.MarshalIndent(targets, "", "    ")
	if err != nil {
		s.log.Error().Err(err).Msg("failed to encode notification targets")
		return
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		s.log.Error().Err(err).Str("file", s.path).Msg("failed to save notification targets")
	}
}
