package testutil

// FixedRunID generates the same run identifier every time.
//
// This enables golden snapshot comparison of pipeline reports: the same
// scenario with the same FixedRunID produces byte-identical output.
//
// Thread-safety: FixedRunID is stateless and safe for concurrent use.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a new fixed run identifier generator.
//
// If id is empty, Generate() returns "test-run-default".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed run identifier.
func (g *FixedRunID) Generate() string {
	return g.id
}
