package cli

import (
	"flag"
	"fmt"
	"io"

	"github.com/vk/invariant/internal/app"
	"github.com/vk/invariant/internal/store"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("invariant", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Invariant - a deterministic execution engine for DAGs of pure operations.

Usage:
  invariant [options] [GRAPH_PATH]

Arguments:
  GRAPH_PATH
    Path to a graph document (.json wire format or .hcl).

Options:
`)
		flagSet.PrintDefaults()
	}

	graphFlag := flagSet.String("graph", "", "Path to the graph document.")
	gFlag := flagSet.String("g", "", "Path to the graph document (shorthand).")
	contextFlag := flagSet.String("context", "", "External context bindings as a JSON object.")
	cacheDirFlag := flagSet.String("cache-dir", store.DefaultDiskRoot, "Root directory of the on-disk artifact cache.")
	noCacheFlag := flagSet.Bool("no-cache", false, "Disable the artifact cache; every operation executes.")
	remoteFlag := flagSet.String("remote-cache", "", "Base URL of a shared remote cache tier.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if *graphFlag != "" {
		path = *graphFlag
	} else if *gFlag != "" {
		path = *gFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if path == "" {
		flagSet.Usage()
		return nil, false, &ExitError{Code: 2, Message: "no graph document provided"}
	}

	return &app.Config{
		GraphPath:   path,
		ContextJSON: *contextFlag,
		CacheDir:    *cacheDirFlag,
		NoCache:     *noCacheFlag,
		RemoteCache: *remoteFlag,
		LogLevel:    *logLevelFlag,
		LogFormat:   *logFormatFlag,
	}, false, nil
}
