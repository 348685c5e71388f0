package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/invariant/internal/expr"
	"github.com/vk/invariant/internal/graph"
	"github.com/vk/invariant/internal/hashing"
	"github.com/vk/invariant/internal/params"
	"github.com/vk/invariant/internal/registry"
	"github.com/vk/invariant/internal/store"
	"github.com/vk/invariant/internal/value"
)

// ErrContract marks a broken value contract: a nil artifact from an
// operation or a nil context value.
var ErrContract = errors.New("value contract violated")

// ErrCancelled reports that cancellation was observed between vertices.
var ErrCancelled = errors.New("execution cancelled")

// Executor runs graphs against a shared store and registry. Construct one
// per embedding; sub-graph recursion reuses the same instance.
type Executor struct {
	registry *registry.Registry
	store    store.Store
	resolver *graph.Resolver
}

// New returns an executor over the given registry and store.
func New(reg *registry.Registry, st store.Store) *Executor {
	return &Executor{
		registry: reg,
		store:    st,
		resolver: graph.NewResolver(reg),
	}
}

// Execute runs g with the optional external context and returns one
// artifact per top-level vertex. Context values are addressable as
// dependencies but never appear in the result map.
func (e *Executor) Execute(ctx context.Context, g *graph.Graph, ectx map[string]value.Value) (map[string]value.Value, error) {
	contextKeys := make(map[string]struct{}, len(ectx))
	for key, v := range ectx {
		if v == nil {
			return nil, fmt.Errorf("%w: context value for %q is nil", ErrContract, key)
		}
		contextKeys[key] = struct{}{}
	}

	order, err := e.resolver.Resolve(g, contextKeys)
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string]value.Value, len(order)+len(ectx))
	for key, v := range ectx {
		artifacts[key] = v
	}

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w before vertex %q: %w", ErrCancelled, name, err)
		}
		v, _ := g.Vertex(name)

		// Phase 1: bind dependencies, resolve the manifest, hash it.
		env := make(expr.Env, len(v.Deps()))
		for _, dep := range v.Deps() {
			env[dep] = artifacts[dep]
		}
		manifest, err := params.Resolve(v.Params(), env)
		if err != nil {
			return nil, fmt.Errorf("vertex %q: %w", name, err)
		}
		digest := hashing.ManifestDigest(manifest)

		// Phase 2: dispatch, recurse, or return cached.
		switch vertex := v.(type) {
		case *graph.OpVertex:
			artifact, err := e.runOp(name, vertex, manifest, digest)
			if err != nil {
				return nil, err
			}
			artifacts[name] = artifact
		case *graph.SubVertex:
			inner, err := e.Execute(ctx, vertex.Inner(), manifest)
			if err != nil {
				return nil, fmt.Errorf("sub-graph vertex %q: %w", name, err)
			}
			artifacts[name] = inner[vertex.Output()]
		default:
			return nil, fmt.Errorf("vertex %q has unknown type %T", name, v)
		}
	}

	results := make(map[string]value.Value, g.Len())
	for _, name := range g.Names() {
		results[name] = artifacts[name]
	}
	return results, nil
}

// runOp returns the cached artifact for (op, digest) or dispatches and
// persists. Ephemeral vertices never touch the store.
func (e *Executor) runOp(name string, v *graph.OpVertex, manifest map[string]value.Value, digest string) (value.Value, error) {
	if !v.Cached() {
		return e.dispatch(name, v.Op(), manifest)
	}
	artifact, err := e.store.Get(v.Op(), digest)
	if err == nil {
		return artifact, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("vertex %q: %w", name, err)
	}
	artifact, err = e.dispatch(name, v.Op(), manifest)
	if err != nil {
		return nil, err
	}
	if err := e.store.Put(v.Op(), digest, artifact); err != nil {
		return nil, fmt.Errorf("vertex %q: persisting artifact: %w", name, err)
	}
	return artifact, nil
}
