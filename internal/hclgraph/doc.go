// Package hclgraph loads graph definitions written in HCL.
//
// A graph file is a sequence of vertex and subgraph blocks:
//
//	vertex "x" {
//	  op     = "identity"
//	  params = { value = 5 }
//	}
//
//	vertex "sum" {
//	  op     = "add"
//	  deps   = ["x", "y"]
//	  params = { a = ref("x"), b = ref("y") }
//	}
//
// The ref, cel, and decimal functions build the corresponding parameter
// markers; everything else evaluates to literals. Numbers must be integers
// (a fractional constant goes through decimal("...")) because the value
// universe carries no floats. Blocks translate to core vertices in source
// order, so execution tie-breaking follows the file.
//
// HCL claims ${...} inside quoted strings for its own templates, so an
// engine interpolation written in a graph file escapes the dollar sign:
// "Width is $${width}px" reaches the resolver as "Width is ${width}px".
package hclgraph
