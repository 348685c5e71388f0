// Package executor orchestrates the two-phase execution of a graph.
//
// # Phases
//
// For each vertex, in topological order: phase 1 binds the vertex's
// declared dependencies to their artifacts, resolves the parameter tree
// into a manifest, and hashes the manifest into a digest. Phase 2 consults
// the shared store under (operation, digest) and dispatches the operation
// only on a miss, writing the result back. An ephemeral vertex skips the
// store entirely and always dispatches.
//
// Sub-graph vertices recurse: the resolved manifest becomes the inner
// graph's context, and execution proceeds against the same store and
// registry. Deduplication needs no extra machinery: two vertices with
// equal (operation, digest) meet in the store, within a run and across
// runs.
//
// # Determinism
//
// Execution is strictly serial in the resolver's order. A cancellation
// signal is checked between vertices; partial progress already written to a
// persistent store survives, which is safe because content-addressed writes
// are either reachable and correct or unreachable and harmless.
package executor
