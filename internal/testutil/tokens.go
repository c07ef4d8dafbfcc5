package testutil

import (
	"fmt"
	"sync"
)

// SequentialTokens generates predictable request tokens for tests:
// "<prefix>-1", "<prefix>-2", ...
//
// This keeps async request tokens stable across runs so stale-result
// assertions and golden output do not depend on uuid randomness.
//
// Thread-safety: safe for concurrent use.
type SequentialTokens struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialTokens creates a generator. An empty prefix means "req".
func NewSequentialTokens(prefix string) *SequentialTokens {
	if prefix == "" {
		prefix = "req"
	}
	return &SequentialTokens{prefix: prefix}
}

// Generate returns the next token.
func (g *SequentialTokens) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
