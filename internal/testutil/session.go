package testutil

// FixedSessionGenerator generates the same session token every time.
//
// This enables deterministic scenario runs and golden snapshot comparison:
// the same scenario with the same FixedSessionGenerator produces
// byte-identical mutation traces.
//
// Unlike engine.FixedGenerator, which returns tokens in sequence and
// panics when exhausted, this generator always returns the same token.
// Useful when a scenario constructs several engines that should share one
// trace identity.
//
// Thread-safety: stateless after construction, safe for concurrent use.
type FixedSessionGenerator struct {
	token string
}

// NewFixedSessionGenerator creates a fixed session token generator.
//
// The token is typically set in the scenario YAML:
//
//	session: "test-session-0001"
//
// If token is empty, Generate() returns "test-session-default".
func NewFixedSessionGenerator(token string) *FixedSessionGenerator {
	if token == "" {
		token = "test-session-default"
	}
	return &FixedSessionGenerator{token: token}
}

// Generate returns the fixed session token.
//
// Implements engine.TokenGenerator.
func (g *FixedSessionGenerator) Generate() string {
	return g.token
}
