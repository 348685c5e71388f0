// Package store provides content-addressed artifact storage keyed by
// (operation name, manifest digest).
//
// # Why the composite key
//
// Two different operations can receive identical manifests and produce
// different outputs, so the digest alone cannot address an artifact. The
// operation name is sanitised for filesystem use with a fixed rule
// (':' and '/' become '_') so independent processes agree on paths.
//
// # Implementations
//
//   - Memory: holds Values directly behind a selectable eviction policy
//     (LRU by default, capacity 1000; LFU, unbounded, or caller-supplied).
//   - Disk: envelope-encoded files under <root>/<op>/<dd>/<rest>, written
//     atomically via a .tmp sibling and rename. A file that exists but
//     cannot be decoded is a fatal corruption, never a miss.
//   - Chain: an L1/L2 composition that promotes L2 hits into L1. Each
//     tier keeps its own counters; the chain reports the logical aggregate.
//   - Null: never stores anything; use it to force execution.
//   - HTTP: a remote shared cache tier speaking envelope bodies over
//     GET/HEAD/PUT, composable under Chain as a persistent L2.
//
// All implementations count hits and misses on Get and puts on each Put
// that stores (Null stores nothing, so its put count stays zero), are
// safe for concurrent use, and treat Put as idempotent: writing the same
// key twice leaves the same visible content.
package store
