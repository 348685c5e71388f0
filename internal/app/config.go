package app

// Config holds the fully-resolved application configuration produced by the
// CLI parser.
type Config struct {
	// GraphPath points at the graph document (.json or .hcl).
	GraphPath string

	// ContextJSON is an optional JSON object of external context bindings.
	ContextJSON string

	// CacheDir is the disk store root. Empty selects the default.
	CacheDir string

	// NoCache forces execution by replacing the store stack with a null
	// store.
	NoCache bool

	// RemoteCache is an optional base URL of a shared remote cache tier.
	RemoteCache string

	LogLevel  string
	LogFormat string
}
