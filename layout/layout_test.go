package layout

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestFontBounds(t *testing.T) {
	f := NewFont()
	if f.Size() != 18 {
		t.Fatalf("default size = %d", f.Size())
	}
	for i := 0; i < 30; i++ {
		f.Increase()
	}
	if f.Size() != MaxFontSize {
		t.Errorf("size after increases = %d, want %d", f.Size(), MaxFontSize)
	}
	for i := 0; i < 30; i++ {
		f.Decrease()
	}
	if f.Size() != MinFontSize {
		t.Errorf("size after decreases = %d, want %d", f.Size(), MinFontSize)
	}
	if got := f.Set(21); got != 21 {
		t.Errorf("Set(21) = %d", got)
	}

	var zero Font
	if zero.Size() != DefaultFontSize {
		t.Errorf("zero Font size = %d", zero.Size())
	}
}

func TestSplitDragClamp(t *testing.T) {
	tests := []struct {
		name   string
		pos    float64
		extent float64
		want   float64
	}{
		{"middle", 500, 1000, 50},
		{"inside", 300, 1000, 30},
		{"left of container", -200, 1000, MinSplit},
		{"near left edge", 50, 1000, MinSplit},
		{"right of container", 1500, 1000, MaxSplit},
		{"near right edge", 950, 1000, MaxSplit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSplit()
			got := s.Drag(tt.pos, tt.extent)
			if got != tt.want {
				t.Errorf("Drag(%v, %v) = %v, want %v", tt.pos, tt.extent, got, tt.want)
			}
			if s.Editor()+s.Output() != 100 {
				t.Errorf("shares sum to %v", s.Editor()+s.Output())
			}
		})
	}
}

func TestSplitDragZeroExtent(t *testing.T) {
	s := NewSplit()
	s.Set(35)
	if got := s.Drag(10, 0); got != 35 {
		t.Errorf("Drag with zero extent = %v", got)
	}
	if got := s.Set(math.NaN()); got != DefaultSplit {
		t.Errorf("Set(NaN) = %v", got)
	}
}

func TestSplitOrientation(t *testing.T) {
	s := NewSplit()
	if s.Orientation() != Horizontal {
		t.Errorf("unknown width should be horizontal")
	}
	s.SetViewport(800)
	if s.Orientation() != Vertical {
		t.Errorf("800px should be vertical")
	}
	s.SetViewport(801)
	if s.Orientation() != Horizontal {
		t.Errorf("801px should be horizontal")
	}
}

func TestFullscreenToggle(t *testing.T) {
	var f Fullscreen
	if req := f.Toggle(false); req != EnterFullscreen {
		t.Errorf("Toggle(false) = %s", req)
	}
	f.Sync(true)
	if !f.Active() {
		t.Error("Sync(true) should mark active")
	}
	if req := f.Toggle(true); req != ExitFullscreen {
		t.Errorf("Toggle(true) = %s", req)
	}
}

func TestMenu(t *testing.T) {
	var m Menu
	if !m.Toggle() || !m.Open() {
		t.Error("first toggle should open")
	}
	m.Close()
	if m.Open() {
		t.Error("Close should close")
	}
}

func TestToast(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var toast Toast
	if _, ok := toast.Current(now); ok {
		t.Error("empty toast should not be visible")
	}

	toast.Show("first", now)
	toast.Show("second", now.Add(time.Second))
	if text, ok := toast.Current(now.Add(2 * time.Second)); !ok || text != "second" {
		t.Errorf("Current = %q, %v", text, ok)
	}
	if _, ok := toast.Current(now.Add(time.Second + ToastLifetime)); ok {
		t.Error("toast should expire after its lifetime")
	}
}

func TestParseView(t *testing.T) {
	for in, want := range map[string]View{"console": ViewConsole, "graphics": ViewGraphics, "turtle": ViewGraphics} {
		got, err := ParseView(in)
		if err != nil || got != want {
			t.Errorf("ParseView(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseView("canvas"); !errors.Is(err, ErrUnknownView) {
		t.Errorf("err = %v", err)
	}
}

func TestLayoutState(t *testing.T) {
	now := time.Now()
	l := New()
	l.Split.SetViewport(600)
	l.Split.Drag(90, 100)
	l.Toast.Show("saved", now)
	st := l.State(now)
	if st.FontSize != 18 || st.EditorShare != 80 || st.OutputShare != 20 {
		t.Errorf("state = %+v", st)
	}
	if st.Orientation != Vertical || st.View != ViewConsole || st.Toast != "saved" {
		t.Errorf("state = %+v", st)
	}
}
