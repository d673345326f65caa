package notify

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/FildCommander/ytptube/internal/events"
	"github.com/FildCommander/ytptube/pkg/types"
)

// TargetInput mirrors a backing-file entry (or an API submission) before
// defaults are applied. Optional fields stay empty here; Materialize fills
// them in.
type TargetInput struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	On      []string      `json:"on"`
	Request *RequestInput `json:"request"`
}

// RequestInput is the request sub-object of a TargetInput.
type RequestInput struct {
	Type    string                      `json:"type"`
	Method  string                      `json:"method"`
	URL     string                      `json:"url"`
	Headers []types.TargetRequestHeader `json:"headers"`
}

// Validate checks a target entry and returns an error naming the first
// violated rule. Rules are checked in a fixed priority order so callers get
// a stable, specific reason.
func Validate(t TargetInput) error {
	if !IsUUIDv4(t.ID) {
		return fmt.Errorf("invalid target: missing or invalid id %q", t.ID)
	}
	if t.Name == "" {
		return fmt.Errorf("invalid target %q: no name found", t.ID)
	}
	if t.Request == nil {
		return fmt.Errorf("invalid target %q: no request details found", t.Name)
	}
	if t.Request.URL == "" {
		return fmt.Errorf("invalid target %q: no request url found", t.Name)
	}
	if m := strings.ToUpper(t.Request.Method); t.Request.Method != "" && m != "POST" && m != "PUT" {
		return fmt.Errorf("invalid target %q: invalid request method %q", t.Name, t.Request.Method)
	}
	if rt := strings.ToLower(t.Request.Type); t.Request.Type != "" && rt != "json" && rt != "form" {
		return fmt.Errorf("invalid target %q: invalid request type %q", t.Name, t.Request.Type)
	}
	for _, e := range t.On {
		if !events.IsValid(e) {
			return fmt.Errorf("invalid target %q: unknown event %q", t.Name, e)
		}
	}
	for _, h := range t.Request.Headers {
		if strings.TrimSpace(h.Key) == "" {
			return fmt.Errorf("invalid target %q: header entry missing key", t.Name)
		}
		if strings.TrimSpace(h.Value) == "" {
			return fmt.Errorf("invalid target %q: header entry missing value", t.Name)
		}
	}
	return nil
}

// Materialize converts a validated entry into an immutable Target, filling
// documented defaults: type=json, method=POST, trimmed header fields.
func Materialize(t TargetInput) types.Target {
	req := types.TargetRequest{Type: "json", Method: "POST"}
	if t.Request != nil {
		if t.Request.Type != "" {
			req.Type = strings.ToLower(t.Request.Type)
		}
		if t.Request.Method != "" {
			req.Method = strings.ToUpper(t.Request.Method)
		}
		req.URL = t.Request.URL
		for _, h := range t.Request.Headers {
			req.Headers = append(req.Headers, types.TargetRequestHeader{
				Key:   strings.TrimSpace(h.Key),
				Value: strings.TrimSpace(h.Value),
			})
		}
	}
	on := t.On
	if on == nil {
		on = []string{}
	}
	return types.Target{ID: t.ID, Name: t.Name, On: on, Request: req}
}

// IsUUIDv4 reports whether s parses as a version 4 UUID.
func IsUUIDv4(s string) bool {
	u, err := uuid.Parse(s)
	return err == nil && u.Version() == 4
}
