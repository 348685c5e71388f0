// Package params models parameter trees and resolves them into manifests.
//
// A parameter tree is a recursive structure whose leaves are either literal
// Values or markers: a Ref marker naming a dependency, or an Expr marker
// carrying expression source. String literals containing ${...} segments are
// a third, implicit marker kind, interpolation, detected at resolve time.
//
// Resolve walks the tree against an environment of dependency artifacts and
// context values. A string whose content is exactly one ${expr} (after
// trimming surrounding whitespace) resolves to the expression's native
// result; any other occurrence substitutes each segment's text form into the
// surrounding literal. An unbalanced ${ with no closing brace is literal
// text, not an error.
//
// Resolution is pure: neither the tree nor the environment is mutated, and
// re-invocation produces the same output.
package params
