// Package gallery is the fixed table of example programs offered to
// learners.
package gallery

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/caffeineduck/pyplay/layout"
)

// ErrNotFound is returned for names missing from the gallery.
var ErrNotFound = errors.New("example not found")

// Example is one named snippet.
type Example struct {
	Name  string      `json:"name"`
	Title string      `json:"title"`
	Code  string      `json:"code"`
	View  layout.View `json:"view"`
}

var turtleImport = regexp.MustCompile(`import\s+turtle|from\s+turtle\s+import`)

// UsesGraphics reports whether code draws with the turtle module and so
// belongs in the graphics view.
func UsesGraphics(code string) bool {
	return turtleImport.MatchString(code)
}

// ViewFor picks the output view for code.
func ViewFor(code string) layout.View {
	if UsesGraphics(code) {
		return layout.ViewGraphics
	}
	return layout.ViewConsole
}

var examples = []Example{
	newExample("hello", srcHello),
	newExample("input", srcInput),
	newExample("loop", srcLoop),
	newExample("function", srcFunction),
	newExample("list", srcList),
	newExample("turtle", srcTurtle),
	newExample("turtle2", srcTurtle2),
	newExample("game", srcGame),
}

func newExample(name, code string) Example {
	return Example{Name: name, Title: titleOf(code), Code: code, View: ViewFor(code)}
}

// titleOf uses the snippet's leading comment as its menu title.
func titleOf(code string) string {
	first, _, _ := strings.Cut(code, "\n")
	return strings.TrimSpace(strings.TrimPrefix(first, "#"))
}

// All returns the examples in menu order.
func All() []Example {
	out := make([]Example, len(examples))
	copy(out, examples)
	return out
}

// Names returns the example names in menu order.
func Names() []string {
	names := make([]string, len(examples))
	for i, ex := range examples {
		names[i] = ex.Name
	}
	return names
}

// Get looks up an example by name.
func Get(name string) (Example, error) {
	for _, ex := range examples {
		if ex.Name == name {
			return ex, nil
		}
	}
	return Example{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}
