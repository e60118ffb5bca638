package hostfunc

import (
	"context"
	"sort"
	"sync"
)

// Func is a host function callable from sandboxed code. Args arrive as the
// decoded JSON object sent by the guest.
type Func func(ctx context.Context, args map[string]any) (any, error)

// Registry maps host function names to implementations.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	r.funcs[name] = fn
	r.mu.Unlock()
}

func (r *Registry) Get(name string) (Func, bool) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	return fn, ok
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy, so per-run registrations never leak
// into the shared registry.
func (r *Registry) Clone() *Registry {
	c := NewRegistry()
	if r == nil {
		return c
	}
	r.mu.RLock()
	for name, fn := range r.funcs {
		c.funcs[name] = fn
	}
	r.mu.RUnlock()
	return c
}
