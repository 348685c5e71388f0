// Package value defines the closed universe of values the engine stores,
// hashes, and passes through its interfaces.
//
// # The Value Union
//
// A Value is one of: Null, Bool, Int (arbitrary precision), Decimal (exact,
// scale-preserving), Str, List, Map (string keys), or Domain (an opaque
// artifact implementing the Artifact capability). The union is closed under
// list/map composition and Domain embedding.
//
// IEEE-754 floating point is forbidden everywhere in the universe. Binary
// byte strings are not Values either, though they may appear inside a Domain
// artifact's serialized form. FromGo is the single conversion boundary from
// untyped Go data into the universe and rejects both.
//
// # Equality
//
// Equal is structural: variants must match and contents compare recursively.
// Maps compare by content regardless of iteration order. Decimals compare by
// canonical form ("1.5" and "1.50" canonicalise identically), which keeps
// equality coherent with hashing.
//
// # Artifacts
//
// Domain values carry an Artifact: a fully-qualified type name, a
// deterministic byte-stream serialization, a stable structural hash, and a
// projection of public attributes back into the Value universe. A
// TypeRegistry maps type names to decoders so stores can rehydrate artifacts
// read from disk or a remote tier.
package value
