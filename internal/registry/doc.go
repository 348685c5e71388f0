// Package registry maps operation names to pure operation implementations
// for a single embedding instance.
//
// A Registry is an explicit value: construct one per application (or per
// test) and hand it to the executor. There is deliberately no process-wide
// singleton; a given execute call only requires a stable registry, and an
// explicit value gives tests isolation for free.
//
// Operation packages implement the Module interface and register themselves
// under a package prefix (for example "poly:add"), the same way the
// application shell wires its core modules.
package registry
