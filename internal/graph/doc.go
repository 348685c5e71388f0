// Package graph models the user-facing DAG: named vertices with parameter
// trees and declared dependencies, and the resolver that validates a graph
// and produces its execution order.
//
// Vertices are frozen at construction; the constructors enforce the
// structural invariants (declared references, non-empty operation names,
// sub-graph outputs that exist). The Graph container preserves insertion
// order, which is what keeps the topological sort's tie-breaking stable for
// an unchanged graph.
package graph
