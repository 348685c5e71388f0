// Package graphio reads and writes the JSON wire format for graphs.
//
// A document is {"format": "invariant-graph", "version": 1, "graph": {...}}.
// Inside parameter trees, single-key objects whose only key is a reserved
// $-name are markers ($ref, $cel, $decimal, $tuple, $icacheable) or the
// $literal escape that inhibits marker interpretation; multi-key objects are
// plain maps. Encoding sorts all string keys and dependency lists, so equal
// graphs serialize to equal bytes. Decoding walks the document in token
// order, so the constructed Graph preserves the document's vertex order and
// execution tie-breaking is stable for a given file.
//
// JSON numbers must be integers: the value universe has no floats, and a
// fractional constant belongs in a {"$decimal": "..."} marker.
package graphio
