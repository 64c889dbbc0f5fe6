package harness

import (
	"fmt"

	"github.com/roach88/lateinit"
)

// Step operations.
const (
	OpNew     = "new"
	OpWrite   = "write"
	OpRead    = "read"
	OpInspect = "inspect"
)

// Step outcomes.
const (
	OutcomeOK                 = "ok"
	OutcomeSuppressed         = "suppressed"
	OutcomeNotInitialized     = "not_initialized"
	OutcomeAlreadyInitialized = "already_initialized"
	OutcomeUnknownProperty    = "unknown_property"
)

var validOps = map[string]bool{
	OpNew:     true,
	OpWrite:   true,
	OpRead:    true,
	OpInspect: true,
}

var validOutcomes = map[string]bool{
	OutcomeOK:                 true,
	OutcomeSuppressed:         true,
	OutcomeNotInitialized:     true,
	OutcomeAlreadyInitialized: true,
	OutcomeUnknownProperty:    true,
}

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Op      string `json:"op"`
	Target  string `json:"target"`
	Class   string `json:"class,omitempty"` // new only
	Outcome string `json:"outcome"`
	Value   string `json:"value,omitempty"` // rendered ir.Value
}

// String formats the event as one golden-file line:
//
//	4 write c.p ok "a"
func (e TraceEvent) String() string {
	s := fmt.Sprintf("%d %s %s %s", e.Seq, e.Op, e.Target, e.Outcome)
	if e.Class != "" {
		s += " class=" + e.Class
	}
	if e.Value != "" {
		s += " " + e.Value
	}
	return s
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// RunID identifies the run in the store.
	RunID string `json:"run_id"`

	// Trace contains one event per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Instances holds the live instances by scenario name, for final_state
	// assertions.
	Instances map[string]*lateinit.Instance `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Trace:     []TraceEvent{},
		Errors:    []string{},
		Instances: make(map[string]*lateinit.Instance),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
