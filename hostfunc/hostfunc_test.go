package hostfunc

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestRegistryCloneIsIndependent(t *testing.T) {
	base := NewRegistry()
	base.Register("a", TimeNow)

	clone := base.Clone()
	clone.Register("b", TimeNow)

	if _, ok := base.Get("b"); ok {
		t.Error("registration on clone leaked into base")
	}
	if _, ok := clone.Get("a"); !ok {
		t.Error("clone missing base function")
	}
	if got := clone.List(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("List() = %v", got)
	}
}

func TestCloneNilRegistry(t *testing.T) {
	var r *Registry
	if got := r.Clone().List(); len(got) != 0 {
		t.Errorf("expected empty clone, got %v", got)
	}
}

func TestModuleTableLookup(t *testing.T) {
	table := NewModuleTable(map[string]string{"turtle": "x = 1"})

	src, err := table.Lookup("turtle")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if src != "x = 1" {
		t.Errorf("unexpected source %q", src)
	}

	_, err = table.Lookup("numpy")
	if !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "File not found: 'numpy'") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestModuleReader(t *testing.T) {
	table := NewModuleTable(nil)
	table.Add("helper", "def f(): pass")
	read := NewModuleReader(table.Lookup)
	ctx := context.Background()

	got, err := read(ctx, map[string]any{"name": "helper"})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got != "def f(): pass" {
		t.Errorf("got %v", got)
	}

	if _, err := read(ctx, map[string]any{}); err == nil {
		t.Error("expected error for missing name")
	}
	if names := table.Names(); !reflect.DeepEqual(names, []string{"helper"}) {
		t.Errorf("Names() = %v", names)
	}
}

func TestInputPassesPrompt(t *testing.T) {
	var seen string
	fn := NewInput(func(ctx context.Context, prompt string) (string, error) {
		seen = prompt
		return "Ada", nil
	})

	got, err := fn(context.Background(), map[string]any{"prompt": "name: "})
	if err != nil {
		t.Fatalf("input failed: %v", err)
	}
	if got != "Ada" || seen != "name: " {
		t.Errorf("got %v with prompt %q", got, seen)
	}
}

func TestTurtleDecodesArgs(t *testing.T) {
	var seen TurtleRequest
	fn := NewTurtle(func(ctx context.Context, req TurtleRequest) error {
		seen = req
		return nil
	})

	_, err := fn(context.Background(), map[string]any{
		"op": "line", "x1": 0.0, "y1": 0.0, "x2": 60.0, "y2": 0.0,
		"color": "red", "width": 3.0,
	})
	if err != nil {
		t.Fatalf("turtle failed: %v", err)
	}
	want := TurtleRequest{Op: "line", X2: 60, Color: "red", Width: 3}
	if seen != want {
		t.Errorf("got %+v, want %+v", seen, want)
	}
}
