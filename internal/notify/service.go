// Package notify implements the event notification dispatch subsystem: a
// validated, persisted set of webhook targets, an event filter, and a
// concurrent fan-out dispatcher with per-target failure isolation.
package notify

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/FildCommander/ytptube/internal/events"
	"github.com/FildCommander/ytptube/pkg/types"
)

// Options configures a Service.
type Options struct {
	// File is the backing targets file path.
	File string
	// Client overrides the shared HTTP client. Nil gets a pooled default.
	Client *http.Client
	// Debug enables logging of successful response bodies.
	Debug bool
}

// Service is the notification facade handed to collaborators. Emit is the
// single entry point: it validates the event against the catalog, schedules
// dispatch in the background and returns immediately, so the download
// pipeline is never blocked by webhook latency or failure.
type Service struct {
	store *Store
	disp  *Dispatcher
	log   zerolog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewService builds the facade and loads targets from the backing file.
func NewService(opts Options, log zerolog.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewStore(opts.File, log)
	s := &Service{
		store:   store,
		disp:    NewDispatcher(store, opts.Client, opts.Debug, log),
		log:     log.With().Str("component", "notify").Logger(),
		baseCtx: ctx,
		cancel:  cancel,
	}
	if err := store.Load(); err != nil {
		s.log.Warn().Err(err).Msg("starting with no notification targets")
	}
	return s
}

// Targets returns a read view of the configured targets.
func (s *Service) Targets() []types.Target { return s.store.Targets() }

// AllowedEvents returns the event names targets may subscribe to.
func (s *Service) AllowedEvents() []string { return events.Names() }

// Clear empties the in-memory target list.
func (s *Service) Clear() { s.store.Clear() }

// Load rebuilds the target list from the backing file. Idempotent: the list
// is fully discarded and repopulated.
func (s *Service) Load() error { return s.store.Load() }

// Replace persists the given list and reloads it, making it the active set.
func (s *Service) Replace(targets []types.Target) error {
	s.store.Save(targets)
	return s.store.Load()
}

// Emit schedules delivery of event to all matched targets and returns
// immediately. Unknown events and events with no configured targets are
// dropped without error.
func (s *Service) Emit(event string, payload Payload) {
	if s.store.Count() == 0 {
		return
	}
	if !events.IsValid(event) {
		s.log.Debug().Str("event", event).Msg("ignoring unknown notification event")
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		results := s.disp.Send(s.baseCtx, event, payload)
		s.log.Debug().Str("event", event).Int("deliveries", len(results)).Msg("notification fan-out finished")
	}()
}

// Added reports a queue item entering the pipeline.
func (s *Service) Added(item types.Item) { s.Emit(events.Added, item) }

// Completed reports a finished download.
func (s *Service) Completed(item types.Item) { s.Emit(events.Completed, item) }

// Cancelled reports a cancelled download.
func (s *Service) Cancelled(item types.Item) { s.Emit(events.Cancelled, item) }

// Cleared reports the queue being cleared.
func (s *Service) Cleared(data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	s.Emit(events.Cleared, MapPayload(data))
}

// Error emits an error log event wrapping message and optional data.
func (s *Service) Error(message string, data map[string]any) {
	s.Emit(events.Error, logPayload("error", message, data))
}

// Info emits an informational log event.
func (s *Service) Info(message string, data map[string]any) {
	s.Emit(events.LogInfo, logPayload("info", message, data))
}

// Success emits a success log event.
func (s *Service) Success(message string, data map[string]any) {
	s.Emit(events.LogSuccess, logPayload("success", message, data))
}

// Test emits the synthetic connectivity-check event to every target.
func (s *Service) Test() {
	s.Emit(events.Test, MapPayload{
		"title":   "Test Notification",
		"message": "This is a test notification.",
	})
}

func logPayload(kind, message string, data map[string]any) MapPayload {
	if data == nil {
		data = map[string]any{}
	}
	return MapPayload{"type": kind, "message": message, "data": data}
}

// Close waits for in-flight deliveries to finish. When ctx expires first,
// remaining deliveries are abandoned by cancelling their requests.
func (s *Service) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}
