package params

import "github.com/vk/invariant/internal/value"

// Tree is one node of a parameter tree.
type Tree interface{ isTree() }

// Lit is a literal Value leaf. Strings containing ${...} are still subject
// to interpolation at resolve time.
type Lit struct{ V value.Value }

// Ref is a reference marker: it resolves to the named dependency's artifact.
type Ref struct{ Dep string }

// Expr is an expression marker: it resolves to the evaluator's result for
// the carried source.
type Expr struct{ Source string }

// List is an ordered sequence of parameter trees.
type List []Tree

// Map is a string-keyed mapping of parameter trees. A vertex's parameter
// tree is always a Map at the top level.
type Map map[string]Tree

func (Lit) isTree()  {}
func (Ref) isTree()  {}
func (Expr) isTree() {}
func (List) isTree() {}
func (Map) isTree()  {}

// CollectRefs returns the dependency names of every Ref marker anywhere in
// the tree, in no particular order.
func CollectRefs(t Tree) []string {
	var out []string
	walkRefs(t, &out)
	return out
}

func walkRefs(t Tree, out *[]string) {
	switch node := t.(type) {
	case Ref:
		*out = append(*out, node.Dep)
	case List:
		for _, e := range node {
			walkRefs(e, out)
		}
	case Map:
		for _, e := range node {
			walkRefs(e, out)
		}
	}
}
