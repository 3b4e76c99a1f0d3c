package testutil

// FixedTraceGenerator returns the same trace id every time.
//
// CLI JSON responses carry a trace id; a fixed one makes the output
// comparable byte for byte.
//
// Thread-safety: FixedTraceGenerator is stateless and safe for concurrent use.
type FixedTraceGenerator struct {
	id string
}

// NewFixedTraceGenerator creates a generator for id. If id is empty,
// Generate returns "test-trace-default".
func NewFixedTraceGenerator(id string) *FixedTraceGenerator {
	if id == "" {
		id = "test-trace-default"
	}
	return &FixedTraceGenerator{id: id}
}

// Generate returns the fixed trace id.
func (g *FixedTraceGenerator) Generate() string {
	return g.id
}
