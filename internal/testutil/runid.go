package testutil

// DefaultRunID is used when a scenario does not pin its own run id.
const DefaultRunID = "test-run-default"

// FixedRunID returns the same run id every time.
//
// Scenarios use it so that golden files and stored runs do not depend on
// randomly generated ids:
//
//	run_id: "test-run-00000000-0000-0000-0000-000000000001"
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a fixed generator. An empty id means DefaultRunID.
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = DefaultRunID
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed run id.
func (g *FixedRunID) Generate() string {
	return g.id
}
