// Package app wires the engine together for the command line: it builds
// the logger, the registry with the bundled operation modules, the store
// stack selected by configuration, loads the graph document, executes it,
// and prints the result artifacts.
//
// The engine core emits no logs of its own; everything observable here is
// the shell's doing.
package app
