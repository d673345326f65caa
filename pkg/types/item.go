package types

// Item is the queue item record attached to download lifecycle events.
// It is the typed payload variant carried in notification envelopes.
type Item struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	URL       string         `json:"url"`
	Preset    string         `json:"preset,omitempty"`
	Folder    string         `json:"folder,omitempty"`
	Status    string         `json:"status,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp int64          `json:"timestamp,omitempty"`
	Datetime  string         `json:"datetime,omitempty"`
	IsLive    bool           `json:"is_live,omitempty"`
	LiveIn    string         `json:"live_in,omitempty"`
	FileSize  int64          `json:"file_size,omitempty"`
	AutoStart bool           `json:"auto_start,omitempty"`
	Extras    map[string]any `json:"extras,omitempty"`
}

// AsMap projects the item into a plain mapping, the shape sent as the
// envelope payload.
func (i Item) AsMap() map[string]any {
	m := map[string]any{
		"id":         i.ID,
		"title":      i.Title,
		"url":        i.URL,
		"preset":     i.Preset,
		"folder":     i.Folder,
		"status":     i.Status,
		"error":      i.Error,
		"timestamp":  i.Timestamp,
		"datetime":   i.Datetime,
		"is_live":    i.IsLive,
		"live_in":    i.LiveIn,
		"file_size":  i.FileSize,
		"auto_start": i.AutoStart,
	}
	if len(i.Extras) > 0 {
		m["extras"] = i.Extras
	}
	return m
}

// Get returns the named field from the mapping projection, or def when the
// field is absent.
func (i Item) Get(key string, def any) any {
	if v, ok := i.AsMap()[key]; ok {
		return v
	}
	return def
}
