// Package expr implements the embedded expression language used by
// parameter markers and string interpolation.
//
// The language is a conventional, non-Turing-complete expression surface:
// variables, field access, indexing, arithmetic, comparison, boolean
// combinators, a ternary, `in` membership, and calls to a closed builtin
// table (decimal, min, max, size, contains, startsWith, endsWith, matches).
// There are no loops, no user-defined functions, and no mutation; every
// evaluation terminates.
//
// Evaluation is pure: Eval(source, env) reads the environment, never writes
// it, and returns a Value. Floating point has no representation here at all.
// The two ways a float could sneak in are both fatal errors: a fractional
// literal (write decimal("3.14") instead) and an integer division whose
// quotient is not exact.
//
// When a variable binds to a Domain artifact, field access traverses the
// artifact's public attributes. An expression whose result is a Domain with
// a distinguished "value" attribute collapses to that attribute, so `${x}`
// over a scalar-wrapping artifact yields the scalar itself.
package expr
