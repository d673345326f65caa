// Package events holds the fixed catalog of lifecycle event names emitted by
// the download pipeline and consumed by the notification subsystem.
package events

// Lifecycle events. The download pipeline emits the item events; the process
// events are emitted by administrative handlers.
const (
	Startup  = "startup"
	Shutdown = "shutdown"
	Paused   = "paused"
	Resumed  = "resumed"

	Added      = "added"
	Updated    = "updated"
	Completed  = "completed"
	Cancelled  = "cancelled"
	Cleared    = "cleared"
	Error      = "error"
	LogInfo    = "log_info"
	LogSuccess = "log_success"

	// Test is the synthetic connectivity-check event. It bypasses per-target
	// filtering and is delivered to every configured target.
	Test = "test"
)

// catalog maps symbolic names to the event names targets may subscribe to.
var catalog = map[string]string{
	"ADDED":       Added,
	"COMPLETED":   Completed,
	"ERROR":       Error,
	"CANCELLED":   Cancelled,
	"CLEARED":     Cleared,
	"LOG_INFO":    LogInfo,
	"LOG_SUCCESS": LogSuccess,
	"TEST":        Test,
}

// Catalog returns the symbolic-name to event-name mapping.
func Catalog() map[string]string {
	m := make(map[string]string, len(catalog))
	for k, v := range catalog {
		m[k] = v
	}
	return m
}

// Names returns the catalog's event names in a stable order.
func Names() []string {
	return []string{Added, Completed, Error, Cancelled, Cleared, LogInfo, LogSuccess, Test}
}

// IsValid reports whether event is a member of the catalog. This is the
// single source of truth both for validating target subscriptions and for
// admission-filtering Emit calls.
func IsValid(event string) bool {
	for _, v := range catalog {
		if v == event {
			return true
		}
	}
	return false
}
