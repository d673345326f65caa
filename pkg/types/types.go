package types

// TargetRequestHeader is a single header applied to a webhook request.
// Target headers are applied after the defaults and may override them,
// including Content-Type.
type TargetRequestHeader struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TargetRequest describes how a notification target wants to be called.
type TargetRequest struct {
	// Body encoding: "json" or "form". Defaults to "json".
	Type string `json:"type"`
	// HTTP method: "POST" or "PUT". Defaults to "POST".
	Method string `json:"method"`
	// Destination URL.
	URL string `json:"url"`
	// Extra headers, applied in order after the defaults.
	Headers []TargetRequestHeader `json:"headers,omitempty"`
}

// Target is a configured webhook destination.
type Target struct {
	// UUID v4 identity of the target.
	ID string `json:"id"`
	// Display label, not required to be unique.
	Name string `json:"name"`
	// Events this target subscribes to. Empty means all events.
	On []string `json:"on"`
	// Delivery shape.
	Request TargetRequest `json:"request"`
}

// DeliveryResult is the outcome of one delivery attempt to one target.
// Failures are folded into Status 500 with the error message as Text.
type DeliveryResult struct {
	URL    string `json:"url"`
	Status int    `json:"status"`
	Text   string `json:"text"`
}

// TargetsResponse wraps the target list returned by the notifications API.
type TargetsResponse struct {
	Notifications []Target `json:"notifications"`
	// Event names a target may subscribe to.
	AllowedTypes []string `json:"allowedTypes"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
