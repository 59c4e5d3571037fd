package model

import "time"

// SyncKind identifies what a sync record describes.
type SyncKind string

const (
	SyncKindSnapshot SyncKind = "snapshot"
	SyncKindStats    SyncKind = "stats"
	SyncKindAction   SyncKind = "action"
)

// SyncRecord is one entry of the local sync history journal. It records
// the outcome of a fetch or write action, never notification contents.
type SyncRecord struct {
	ID        string        `json:"id"`
	Kind      SyncKind      `json:"kind"`
	Op        string        `json:"op"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Items     int           `json:"items"`
	NewItems  int           `json:"new_items"`
	Error     string        `json:"error,omitempty"`
}

// Failed reports whether the recorded operation ended with an error.
func (r SyncRecord) Failed() bool {
	return r.Error != ""
}
