package notify

// Payload is the narrow capability the dispatcher needs from an event
// payload. Both the typed queue item record and plain mappings satisfy it.
type Payload interface {
	// Get returns the value for key, or def when absent.
	Get(key string, def any) any
	// AsMap projects the payload into the mapping sent in the envelope.
	AsMap() map[string]any
}

// MapPayload is the raw-mapping payload variant.
type MapPayload map[string]any

func (m MapPayload) Get(key string, def any) any {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

func (m MapPayload) AsMap() map[string]any { return m }

// payloadID extracts a best-effort item identifier for log correlation.
func payloadID(p Payload) string {
	if p == nil {
		return "??"
	}
	if v, ok := p.Get("id", nil).(string); ok && v != "" {
		return v
	}
	if v, ok := p.Get("_id", nil).(string); ok && v != "" {
		return v
	}
	return "??"
}
