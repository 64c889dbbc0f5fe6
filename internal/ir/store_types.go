package ir

// NOTE: These are store-layer records, not part of the class IR.

// RunRecord is one persisted scenario execution.
type RunRecord struct {
	ID       string `json:"id"`
	Scenario string `json:"scenario"`
	Pass     bool   `json:"pass"`
	Events   int    `json:"events"`
}

// EventRecord is one persisted trace event of a run.
type EventRecord struct {
	RunID   string `json:"run_id"`
	Seq     int64  `json:"seq"`
	Op      string `json:"op"`
	Target  string `json:"target"`
	Outcome string `json:"outcome"`
	Value   string `json:"value,omitempty"` // Rendered with Render
}
