package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/invariant/internal/ctxlog"
	"github.com/vk/invariant/internal/executor"
	"github.com/vk/invariant/internal/graph"
	"github.com/vk/invariant/internal/graphio"
	"github.com/vk/invariant/internal/hclgraph"
	"github.com/vk/invariant/internal/ops/poly"
	"github.com/vk/invariant/internal/ops/stdlib"
	"github.com/vk/invariant/internal/registry"
	"github.com/vk/invariant/internal/store"
	"github.com/vk/invariant/internal/value"
)

// App is a single command-line invocation of the engine.
type App struct {
	out  io.Writer
	logW io.Writer
	cfg  *Config
}

// NewApp assembles an application instance. Results print to out; logs go
// to logW.
func NewApp(out, logW io.Writer, cfg *Config) *App {
	return &App{out: out, logW: logW, cfg: cfg}
}

// Run loads the graph, executes it, and prints one line per top-level
// vertex.
func (a *App) Run(ctx context.Context) error {
	logger := newLogger(a.cfg, a.logW)
	ctx = ctxlog.WithLogger(ctx, logger)

	reg := registry.New()
	modules := []registry.Module{stdlib.Module{}, poly.Module{}}
	for _, m := range modules {
		if err := m.Register(reg); err != nil {
			return fmt.Errorf("registering operations: %w", err)
		}
	}

	st, closeStore, err := a.buildStore(reg)
	if err != nil {
		return err
	}
	defer closeStore()

	g, err := a.loadGraph(reg)
	if err != nil {
		return err
	}

	var ectx map[string]value.Value
	if a.cfg.ContextJSON != "" {
		ectx, err = graphio.UnmarshalContext([]byte(a.cfg.ContextJSON), reg.Types)
		if err != nil {
			return err
		}
	}

	logger.Info("Executing graph.", "vertices", g.Len(), "context", len(ectx))
	exec := executor.New(reg, st)
	results, err := exec.Execute(ctx, g, ectx)
	if err != nil {
		return err
	}
	stats := st.Stats()
	logger.Info("Execution complete.",
		"hits", stats.Hits, "misses", stats.Misses, "puts", stats.Puts)

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		encoded, err := graphio.MarshalValue(results[name])
		if err != nil {
			return fmt.Errorf("rendering result %q: %w", name, err)
		}
		fmt.Fprintf(a.out, "%s = %s\n", name, encoded)
	}
	return nil
}

// buildStore assembles the store stack: memory over disk, with an optional
// remote tier underneath, or a null store when caching is disabled.
func (a *App) buildStore(reg *registry.Registry) (store.Store, func(), error) {
	noop := func() {}
	if a.cfg.NoCache {
		return store.NewNull(), noop, nil
	}
	disk, err := store.NewDisk(a.cfg.CacheDir, reg.Types)
	if err != nil {
		return nil, nil, err
	}
	var st store.Store = store.NewChain(store.NewMemory(), disk)
	if a.cfg.RemoteCache != "" {
		remote := store.NewHTTP(a.cfg.RemoteCache, reg.Types)
		return store.NewChain(st, remote), func() { remote.Close() }, nil
	}
	return st, noop, nil
}

func (a *App) loadGraph(reg *registry.Registry) (*graph.Graph, error) {
	switch strings.ToLower(filepath.Ext(a.cfg.GraphPath)) {
	case ".json":
		f, err := os.Open(a.cfg.GraphPath)
		if err != nil {
			return nil, fmt.Errorf("opening graph file: %w", err)
		}
		defer f.Close()
		return graphio.DecodeGraph(f, reg.Types)
	case ".hcl":
		return hclgraph.LoadFile(a.cfg.GraphPath)
	}
	return nil, fmt.Errorf("unsupported graph file extension %q (want .json or .hcl)",
		filepath.Ext(a.cfg.GraphPath))
}
