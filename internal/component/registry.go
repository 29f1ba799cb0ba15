// Package component holds the shared UI component infrastructure: the instance
// registry that replaces per-component document-level listeners, and the scroll
// lock counter.
package component

import "sync"

// Dismissible is implemented by components that own transient popup state
// (dropdowns, menus) that an outside interaction should close.
type Dismissible interface {
	Dismiss()
}

// Registry tracks live component instances by ID. A single registry replaces
// the per-component outside-click listeners: one event fans out to every
// registered instance except the one that was interacted with.
type Registry struct {
	mu    sync.RWMutex
	items map[string]Dismissible
}

// NewRegistry creates an empty component registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Dismissible)}
}

// Register adds a component instance. Re-registering an ID replaces the
// previous entry.
func (r *Registry) Register(id string, d Dismissible) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[id] = d
}

// Unregister removes a component instance. Unknown IDs are a no-op.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
}

// DismissOthers closes every registered component except the named one.
func (r *Registry) DismissOthers(id string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for key, d := range r.items {
		if key != id {
			d.Dismiss()
		}
	}
}

// Len returns the number of registered instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
