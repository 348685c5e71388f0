package expr

import "github.com/vk/invariant/internal/value"

// Node is a parsed expression. The tree is immutable once built.
type Node interface{ isNode() }

// Lit is a literal Int, Str, Bool, or Null.
type Lit struct{ V value.Value }

// Ident is a variable reference.
type Ident struct{ Name string }

// Member is field access: x.name.
type Member struct {
	X    Node
	Name string
}

// Index is subscripting: x[i].
type Index struct{ X, I Node }

// Call invokes a builtin, either as a function (fn(args...)) or as a
// method on a receiver (recv.fn(args...)).
type Call struct {
	Fn   string
	Recv Node // nil for function form
	Args []Node
}

// Unary is prefix negation or logical not.
type Unary struct {
	Op string
	X  Node
}

// Binary is an infix operation, including `in`.
type Binary struct {
	Op   string
	X, Y Node
}

// Ternary is cond ? then : else.
type Ternary struct{ Cond, Then, Else Node }

func (Lit) isNode()     {}
func (Ident) isNode()   {}
func (Member) isNode()  {}
func (Index) isNode()   {}
func (Call) isNode()    {}
func (Unary) isNode()   {}
func (Binary) isNode()  {}
func (Ternary) isNode() {}
