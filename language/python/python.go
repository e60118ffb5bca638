// Package python provides the Python language adapter for pyplay.
//
// The interpreter is a RustPython WASI build loaded from disk. User code is
// never concatenated into the prelude as raw text: it travels as a string
// literal and is compiled under the filename "<stdin>", so reported line
// numbers match the editor.
package python

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

//go:embed stdlib.py
var stdlib string

//go:embed lib/turtle.py
var turtleSource string

// ErrNoModule is returned by Load for an empty path.
var ErrNoModule = errors.New("python wasm path not set")

// Python implements the executor.Language interface for Python execution.
type Python struct {
	wasm []byte
}

// New returns a Python language adapter around an interpreter binary.
func New(wasm []byte) *Python {
	return &Python{wasm: wasm}
}

// Load reads the interpreter binary from path.
func Load(path string) (*Python, error) {
	if path == "" {
		return nil, ErrNoModule
	}
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read python wasm: %w", err)
	}
	return New(wasm), nil
}

// Name returns "python".
func (p *Python) Name() string {
	return "python"
}

// Module returns the RustPython WASM binary.
func (p *Python) Module() []byte {
	return p.wasm
}

// WrapCode prepends the prelude and hands user code to it as a literal.
// Names served by BuiltinModules are resolved by the host before the
// interpreter's own import path.
func (p *Python) WrapCode(code string) string {
	return stdlib + "\n_pyplay_host_modules(" + hostModuleNames + ")\n_pyplay_main(" + quote(code) + ")\n"
}

// hostModuleNames is the Python list literal of BuiltinModules keys.
var hostModuleNames = func() string {
	names := make([]string, 0, len(BuiltinModules()))
	for name := range BuiltinModules() {
		names = append(names, name)
	}
	sort.Strings(names)
	b, err := json.Marshal(names)
	if err != nil {
		return "[]"
	}
	return string(b)
}()

// Args returns the command-line arguments for the Python interpreter.
func (p *Python) Args(wrappedCode string) []string {
	return []string{"python", "-c", wrappedCode}
}

// BuiltinModules returns the module sources served to the guest through
// module_read, keyed by import name.
func BuiltinModules() map[string]string {
	return map[string]string{
		"turtle": turtleSource,
	}
}

// quote renders s as a Python string literal. Every escape json.Marshal
// produces is also valid inside a Python str literal.
func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
