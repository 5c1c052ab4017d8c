package testutil

import (
	"fmt"
	"sync/atomic"
)

// SequentialIDs generates "<prefix>-1", "<prefix>-2", ... invocation IDs.
//
// Unlike pipeline.FixedGenerator it never runs out, which suits scenarios
// whose invocation count is data-driven.
//
// Thread-safety: safe for concurrent use.
type SequentialIDs struct {
	prefix string
	n      atomic.Int64
}

// NewSequentialIDs creates a generator. An empty prefix means "inv".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "inv"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next ID.
func (g *SequentialIDs) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.n.Add(1))
}
