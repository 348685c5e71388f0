// Package hashing computes the canonical SHA-256 of Values and manifests.
//
// Scalars hash as fixed marker strings ("None", "true", decimal ASCII,
// canonical decimal form, raw UTF-8). Lists stream their elements' hashes in
// order into a fresh digest. Maps sort their keys lexicographically and
// stream key-hash followed by value-hash pairs; sorted keys are the single
// source of canonicalisation. Domain artifacts contribute their own stable
// hash, treated as opaque.
//
// The 64-character lowercase hex form of a manifest hash is the Digest used
// as the cache key throughout the engine.
package hashing
