package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/FildCommander/ytptube/internal/events"
	"github.com/FildCommander/ytptube/internal/version"
	"github.com/FildCommander/ytptube/pkg/types"
)

// envelope is the body shape sent in every webhook call.
type envelope struct {
	Event     string `json:"event"`
	CreatedAt string `json:"created_at"`
	Payload   any    `json:"payload"`
}

// Dispatcher fans an event out to every matched target over a shared,
// connection-pooled HTTP client. Each Send joins on all deliveries; one
// target's failure or latency never delays or cancels its siblings.
type Dispatcher struct {
	store  *Store
	client *http.Client
	log    zerolog.Logger
	debug  bool
}

// NewDispatcher wires a Dispatcher to the store. A nil client gets a pooled
// default with a 60 second timeout; timeouts are the transport's concern,
// this layer imposes no per-request policy of its own.
func NewDispatcher(store *Store, client *http.Client, debug bool, log zerolog.Logger) *Dispatcher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Dispatcher{
		store:  store,
		client: client,
		log:    log.With().Str("component", "notify.dispatcher").Logger(),
		debug:  debug,
	}
}

// Send delivers event to every matched target concurrently and returns one
// result per attempt, in target order. A nil payload is logged and dropped.
// Send never returns an error: failures are folded into the result records.
func (d *Dispatcher) Send(ctx context.Context, event string, payload Payload) []types.DeliveryResult {
	targets := d.store.snapshot()
	if len(targets) == 0 {
		return []types.DeliveryResult{}
	}
	if payload == nil {
		d.log.Debug().Str("event", event).Msg("dropping event with nil payload")
		return []types.DeliveryResult{}
	}

	matched := make([]types.Target, 0, len(targets))
	for _, t := range targets {
		if !Matches(t, event) {
			continue
		}
		matched = append(matched, t)
	}
	if len(matched) == 0 {
		return []types.DeliveryResult{}
	}

	results := make([]types.DeliveryResult, len(matched))
	var wg sync.WaitGroup
	for i, t := range matched {
		wg.Add(1)
		go func(i int, t types.Target) {
			defer wg.Done()
			results[i] = d.deliver(ctx, event, t, payload)
		}(i, t)
	}
	wg.Wait()
	return results
}

// Matches reports whether a target subscribes to event. An empty subscription
// list means all events, and the synthetic test event bypasses filtering.
func Matches(t types.Target, event string) bool {
	if len(t.On) == 0 || event == events.Test {
		return true
	}
	for _, e := range t.On {
		if e == event {
			return true
		}
	}
	return false
}

func (d *Dispatcher) deliver(ctx context.Context, event string, t types.Target, payload Payload) types.DeliveryResult {
	itemID := payloadID(payload)
	d.log.Info().
		Str("event", event).
		Str("id", itemID).
		Str("target", t.Name).
		Msg("sending notification")

	body, contentType, err := buildBody(event, t, payload)
	if err != nil {
		d.log.Error().Err(err).Str("event", event).Str("target", t.Name).Msg("failed to encode notification body")
		recordDelivery(event, false)
		return types.DeliveryResult{URL: t.Request.URL, Status: http.StatusInternalServerError, Text: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, t.Request.Method, t.Request.URL, bytes.NewReader(body))
	if err != nil {
		recordDelivery(event, false)
		return types.DeliveryResult{URL: t.Request.URL, Status: http.StatusInternalServerError, Text: err.Error()}
	}
	req.Header.Set("User-Agent", "YTPTube/"+version.Version)
	req.Header.Set("Content-Type", contentType)
	for _, h := range t.Request.Headers {
		req.Header.Set(h.Key, h.Value)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.log.Error().Err(err).
			Str("event", event).
			Str("id", itemID).
			Str("target", t.Name).
			Msg("notification delivery failed")
		recordDelivery(event, false)
		return types.DeliveryResult{URL: t.Request.URL, Status: http.StatusInternalServerError, Text: err.Error()}
	}
	defer resp.Body.Close()

	text, _ := io.ReadAll(resp.Body)
	ev := d.log.Info().
		Str("event", event).
		Str("id", itemID).
		Str("target", t.Name).
		Int("status", resp.StatusCode)
	if d.debug && len(text) > 0 {
		ev = ev.Str("body", string(text))
	}
	ev.Msg("notification delivered")

	recordDelivery(event, true)
	return types.DeliveryResult{URL: t.Request.URL, Status: resp.StatusCode, Text: string(text)}
}

// buildBody encodes the {event, created_at, payload} envelope per the
// target's request type. A form body cannot carry nested structures, so the
// payload field is pre-serialized to a JSON string there.
func buildBody(event string, t types.Target, payload Payload) ([]byte, string, error) {
	created := time.Now().UTC().Format(time.RFC3339)

	if strings.ToLower(t.Request.Type) == "form" {
		raw, err := json.Marshal(payload.AsMap())
		if err != nil {
			return nil, "", err
		}
		form := url.Values{}
		form.Set("event", event)
		form.Set("created_at", created)
		form.Set("payload", string(raw))
		return []byte(form.Encode()), "application/x-www-form-urlencoded", nil
	}

	b, err := json.Marshal(envelope{Event: event, CreatedAt: created, Payload: payload.AsMap()})
	if err != nil {
		return nil, "", err
	}
	return b, "application/json", nil
}
