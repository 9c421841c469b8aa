// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package handler

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates the TokenHandler described by a Descriptor.
type Factory func(d Descriptor) (TokenHandler, error)

// Registry maps handler kinds to the factories which create them. It is
// safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry. See RegisterBuiltins.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register adds a factory for kind.
func (r *Registry) Register(kind string, f Factory) error {
	const op = "Registry.Register"
	switch {
	case kind == "":
		return fmt.Errorf("%s: kind is empty: %w", op, ErrInvalidParameter)
	case f == nil:
		return fmt.Errorf("%s: factory for %q is nil: %w", op, kind, ErrNilParameter)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[kind]; ok {
		return fmt.Errorf("%s: %q: %w", op, kind, ErrDuplicateKind)
	}
	r.factories[kind] = f
	return nil
}

// Has reports whether a factory is registered for kind.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[kind]
	return ok
}

// New creates the handler described by d.
func (r *Registry) New(d Descriptor) (TokenHandler, error) {
	const op = "Registry.New"
	r.mu.RLock()
	f, ok := r.factories[d.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %q: %w", op, d.Kind, ErrUnknownKind)
	}
	h, err := f(d)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create %q handler: %w", op, d.Kind, err)
	}
	if h == nil {
		return nil, fmt.Errorf("%s: factory for %q returned no handler: %w", op, d.Kind, ErrNilParameter)
	}
	return h, nil
}

// Handlers resolves the descriptors applicable to flowContext (see Resolve)
// and creates their handlers, in invocation order.
func (r *Registry) Handlers(descriptors []Descriptor, flowContext string) ([]TokenHandler, error) {
	const op = "Registry.Handlers"
	resolved, err := Resolve(descriptors, flowContext)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	handlers := make([]TokenHandler, 0, len(resolved))
	for _, d := range resolved {
		h, err := r.New(d)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}

// Resolve returns the descriptors whose Context is GlobalContext or equals
// flowContext, ordered by ascending Priority. An empty flowContext only
// matches global descriptors.
//
// ErrNoHandlers is returned when descriptors is empty; no descriptor
// matching flowContext is not an error.
//
// The ordering is deliberately permissive: a pair in which either side has
// no Priority compares as equal, so it is not a total order. A stable sort
// is used, leaving such pairs in their configured order.
func Resolve(descriptors []Descriptor, flowContext string) ([]Descriptor, error) {
	const op = "handler.Resolve"
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoHandlers)
	}
	eligible := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if d.Context == GlobalContext || (flowContext != "" && d.Context == flowContext) {
			eligible = append(eligible, d)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i].Priority, eligible[j].Priority
		if a == nil || b == nil {
			return false
		}
		return *a < *b
	})
	return eligible, nil
}
