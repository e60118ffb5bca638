package hostfunc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrModuleNotFound is returned for names missing from a ModuleTable.
var ErrModuleNotFound = errors.New("module not found")

// ModuleTable serves module sources by dotted name. It plays the role of the
// interpreter's builtin file table: anything not listed is reported missing.
type ModuleTable struct {
	mu      sync.RWMutex
	sources map[string]string
}

// NewModuleTable copies sources into a new table.
func NewModuleTable(sources map[string]string) *ModuleTable {
	t := &ModuleTable{sources: make(map[string]string, len(sources))}
	for name, src := range sources {
		t.sources[name] = src
	}
	return t
}

// Add registers or replaces a module source.
func (t *ModuleTable) Add(name, source string) {
	t.mu.Lock()
	t.sources[name] = source
	t.mu.Unlock()
}

// Lookup returns the source for name. Unknown names fail with an error that
// wraps ErrModuleNotFound and reads like the interpreter's own message.
func (t *ModuleTable) Lookup(name string) (string, error) {
	name = strings.TrimSpace(name)
	t.mu.RLock()
	src, ok := t.sources[name]
	t.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("File not found: '%s': %w", name, ErrModuleNotFound)
	}
	return src, nil
}

// Names lists the modules in the table.
func (t *ModuleTable) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.sources))
	for name := range t.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewModuleReader adapts a lookup function to the module_read host call.
// Args: name (required).
func NewModuleReader(lookup func(name string) (string, error)) Func {
	return func(ctx context.Context, args map[string]any) (any, error) {
		name, ok := stringArg(args, "name")
		if !ok || name == "" {
			return nil, errors.New("name required")
		}
		return lookup(name)
	}
}
