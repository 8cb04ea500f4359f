package backend

import (
	"sync"

	"github.com/go-mosf/mosf/pkg/errors"
)

// PriorityOrder is the fixed fallback order used when the preferred
// backend is unavailable.
var PriorityOrder = []string{"toga", "kivy"}

// Registry maps backend identifiers to their adapters and resolves the
// one adapter driving an application run.
//
// Resolution happens once: the first successful Resolve pins the chosen
// adapter for the registry's lifetime. Switching backends at runtime is
// out of scope; restart the process instead.
type Registry struct {
	mu       sync.Mutex
	adapters map[string]Adapter
	resolved Adapter
}

// NewRegistry creates an empty registry. Tests construct fresh
// registries; applications normally use the package-level Default.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register installs an adapter under its ID. Adapters register
// unconditionally; availability is probed at resolve time so a missing
// native toolkit fails resolution, never import.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.ID()] = a
}

// Adapters returns the registered adapter ids in priority order,
// followed by any ids outside the fixed order.
func (r *Registry) Adapters() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	seen := make(map[string]bool)
	for _, id := range PriorityOrder {
		if _, ok := r.adapters[id]; ok {
			out = append(out, id)
			seen[id] = true
		}
	}
	for id := range r.adapters {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

// Adapter returns the registered adapter for an id without probing
// availability.
func (r *Registry) Adapter(id string) (Adapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.adapters[id]
	if !ok {
		return nil, errors.New("backend.Registry.Adapter", errors.KindBackendUnavailable,
			"no adapter registered for backend %q", id)
	}
	return a, nil
}

// Resolve picks the backend for this run: the preferred one when it is
// registered and available, else the first available backend in
// PriorityOrder. Once a backend has been resolved it stays resolved;
// later calls return the same adapter regardless of preference.
//
// Resolve fails with a no-backend error when every candidate is
// unavailable, listing what was probed.
func (r *Registry) Resolve(preferred string) (Adapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved != nil {
		return r.resolved, nil
	}

	var probed []string
	try := func(id string) Adapter {
		a, ok := r.adapters[id]
		if !ok {
			return nil
		}
		probed = append(probed, id)
		if !a.Available() {
			return nil
		}
		return a
	}

	if preferred != "" {
		if a := try(preferred); a != nil {
			r.resolved = a
			return a, nil
		}
	}
	for _, id := range PriorityOrder {
		if id == preferred {
			continue
		}
		if a := try(id); a != nil {
			r.resolved = a
			return a, nil
		}
	}

	return nil, errors.New("backend.Registry.Resolve", errors.KindNoBackend,
		"no backend available (probed %v); install the beeware or kivy extra", probed)
}

// Resolved returns the pinned adapter, if resolution has happened.
func (r *Registry) Resolved() (Adapter, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved, r.resolved != nil
}

// ResetForTest clears the pinned adapter so tests can re-resolve.
func (r *Registry) ResetForTest() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolved = nil
}

// Default is the process-wide registry. The toga and kivy packages
// register their adapters here at import time.
var Default = NewRegistry()

// Register installs an adapter in the Default registry.
func Register(a Adapter) { Default.Register(a) }

// Resolve resolves against the Default registry.
func Resolve(preferred string) (Adapter, error) { return Default.Resolve(preferred) }
