package insight

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypePathCertified is emitted when a consolidation audit passes
	// and the path can proceed.
	EventTypePathCertified = "weft.path.certified"
)

// PathCertifiedEvent is a transport-neutral event payload for a certified
// reasoning path.
type PathCertifiedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	SessionID     string    `json:"session_id"`
	Goal          string    `json:"goal,omitempty"`
	Path          []int     `json:"path"`
	Summary       string    `json:"summary"`
}
