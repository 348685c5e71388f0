package executor

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/invariant/internal/value"
)

// ErrDispatch marks failures binding a manifest to an operation: the
// operation is unregistered, a required parameter is missing, or the
// manifest carries extras the operation does not accept.
var ErrDispatch = errors.New("operation dispatch failed")

// dispatch pairs manifest keys to the operation's declared parameters by
// name and invokes it.
func (e *Executor) dispatch(vertexName, opName string, manifest map[string]value.Value) (value.Value, error) {
	op, ok := e.registry.Get(opName)
	if !ok {
		return nil, fmt.Errorf("%w: vertex %q names unregistered operation %q",
			ErrDispatch, vertexName, opName)
	}

	args := make(map[string]value.Value, len(manifest))
	declared := make(map[string]struct{}, len(op.Params))
	for _, p := range op.Params {
		declared[p.Name] = struct{}{}
		if v, present := manifest[p.Name]; present {
			args[p.Name] = v
			continue
		}
		if p.Required {
			return nil, fmt.Errorf("%w: vertex %q: operation %q requires parameter %q, absent from manifest",
				ErrDispatch, vertexName, opName, p.Name)
		}
		if p.Default != nil {
			args[p.Name] = p.Default
		}
	}

	var extras []string
	for key := range manifest {
		if _, ok := declared[key]; !ok {
			extras = append(extras, key)
		}
	}
	if len(extras) > 0 {
		if !op.CatchAll {
			sort.Strings(extras)
			return nil, fmt.Errorf("%w: vertex %q: operation %q does not accept parameter(s) %s",
				ErrDispatch, vertexName, opName, strings.Join(extras, ", "))
		}
		for _, key := range extras {
			args[key] = manifest[key]
		}
	}

	out, err := op.Apply(args)
	if err != nil {
		return nil, fmt.Errorf("%w: vertex %q: operation %q: %w", ErrDispatch, vertexName, opName, err)
	}
	if out == nil {
		return nil, fmt.Errorf("%w: vertex %q: operation %q returned no value", ErrContract, vertexName, opName)
	}
	return out, nil
}
