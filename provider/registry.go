// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Resolver maps a provider name to a configured Provider.
type Resolver interface {
	Provider(name string) (Provider, error)
}

// Registry is a Resolver over a fixed set of named providers. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// ensure that Registry implements the Resolver interface
var _ Resolver = (*Registry)(nil)

// NewRegistry creates a Registry holding the providers, keyed by Name().
func NewRegistry(providers ...Provider) (*Registry, error) {
	const op = "provider.NewRegistry"
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if err := r.Add(p); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return r, nil
}

// Add registers a provider under its Name().
func (r *Registry) Add(p Provider) error {
	const op = "Registry.Add"
	if p == nil {
		return fmt.Errorf("%s: provider is nil: %w", op, ErrNilParameter)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[p.Name()]; ok {
		return fmt.Errorf("%s: %q: %w", op, p.Name(), ErrDuplicateProvider)
	}
	r.providers[p.Name()] = p
	return nil
}

// Provider returns the provider registered under name.
func (r *Registry) Provider(name string) (Provider, error) {
	const op = "Registry.Provider"
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%s: %q: %w", op, name, ErrUnknownProvider)
	}
	return p, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Done releases the background resources of every registered provider that
// holds any.
func (r *Registry) Done() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.providers {
		if d, ok := p.(interface{ Done() }); ok {
			d.Done()
		}
	}
}
