package domain

import "time"

// EventKind distinguishes the pipeline events published for a project.
type EventKind string

const (
	EventStatus  EventKind = "status"
	EventLog     EventKind = "log"
	EventDeleted EventKind = "deleted"
)

// Event is a single pipeline observation pushed to live subscribers.
// The persisted record stays the source of truth; events are advisory.
type Event struct {
	ProjectID string    `json:"projectId"`
	Kind      EventKind `json:"kind"`
	Status    Status    `json:"status,omitempty"`
	Log       *LogEntry `json:"log,omitempty"`
	At        time.Time `json:"at"`
}
