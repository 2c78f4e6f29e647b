package ast

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// NodeID identifies an Expr or Stmt for the lifetime of a compile. Resolver
// passes attach annotations to a NodeID rather than mutating the node,
// matching the "side table keyed by node id" lifecycle in the spec. IDs
// never reach emitted shell text, so their non-determinism does not affect
// the determinism of the compiler's output.
type NodeID = ulid.ULID

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewNodeID mints a fresh node id, the same way this codebase mints entity
// ids (ulid.Make()) for tasks, agents, and events.
func NewNodeID() NodeID {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy)
}
