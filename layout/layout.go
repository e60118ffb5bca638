// Package layout models the playground chrome: font size, the split between
// editor and output panes, fullscreen, the output view tabs, the examples
// menu and toast notices.
//
// None of the types here lock. The playground workspace owns them and
// serializes access.
package layout

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Font size bounds in points.
const (
	DefaultFontSize = 18
	MinFontSize     = 10
	MaxFontSize     = 32
	FontStep        = 1
)

// Split bounds as the editor pane's percentage share.
const (
	DefaultSplit = 50.0
	MinSplit     = 20.0
	MaxSplit     = 80.0
	// NarrowWidth is the widest viewport that stacks the panes.
	NarrowWidth = 800
)

// ToastLifetime is how long a notice stays visible.
const ToastLifetime = 2200 * time.Millisecond

// View selects the output tab.
type View string

const (
	ViewConsole  View = "console"
	ViewGraphics View = "graphics"
)

// ErrUnknownView is returned by ParseView.
var ErrUnknownView = errors.New("unknown view")

// ParseView accepts "console", "graphics" and the legacy "turtle".
func ParseView(s string) (View, error) {
	switch s {
	case "console":
		return ViewConsole, nil
	case "graphics", "turtle":
		return ViewGraphics, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// Orientation of the split.
type Orientation string

const (
	// Horizontal places the panes side by side.
	Horizontal Orientation = "horizontal"
	// Vertical stacks the editor above the output.
	Vertical Orientation = "vertical"
)

// Font tracks the editor font size.
type Font struct {
	size int
}

// NewFont returns a font at DefaultFontSize.
func NewFont() Font {
	return Font{size: DefaultFontSize}
}

func (f Font) Size() int {
	if f.size == 0 {
		return DefaultFontSize
	}
	return f.size
}

// Set clamps n into [MinFontSize, MaxFontSize] and returns the result.
func (f *Font) Set(n int) int {
	f.size = clampInt(n, MinFontSize, MaxFontSize)
	return f.size
}

func (f *Font) Increase() int { return f.Set(f.Size() + FontStep) }

func (f *Font) Decrease() int { return f.Set(f.Size() - FontStep) }

// Split tracks the editor share of the pane area and the viewport width.
type Split struct {
	editor float64
	width  int
}

// NewSplit returns an even split for a wide viewport.
func NewSplit() Split {
	return Split{editor: DefaultSplit}
}

// Editor returns the editor pane's share in percent.
func (s Split) Editor() float64 {
	if s.editor == 0 {
		return DefaultSplit
	}
	return s.editor
}

// Output returns the output pane's share in percent.
func (s Split) Output() float64 {
	return 100 - s.Editor()
}

// Set clamps pct into [MinSplit, MaxSplit].
func (s *Split) Set(pct float64) float64 {
	if math.IsNaN(pct) {
		pct = DefaultSplit
	}
	s.editor = math.Max(MinSplit, math.Min(MaxSplit, pct))
	return s.editor
}

// Drag applies a pointer at offset pos inside a container of the given
// extent along the split axis. The pointer may lie outside the container;
// the share is clamped either way.
func (s *Split) Drag(pos, extent float64) float64 {
	if extent <= 0 {
		return s.Editor()
	}
	return s.Set(pos * 100 / extent)
}

// SetViewport records the viewport width used to pick the orientation.
func (s *Split) SetViewport(width int) {
	s.width = width
}

func (s Split) Viewport() int { return s.width }

// Orientation is Vertical for viewports at most NarrowWidth wide. An unknown
// width (zero) counts as wide.
func (s Split) Orientation() Orientation {
	if s.width > 0 && s.width <= NarrowWidth {
		return Vertical
	}
	return Horizontal
}

// FullscreenRequest is what the front end should ask the host to do.
type FullscreenRequest string

const (
	EnterFullscreen FullscreenRequest = "enter"
	ExitFullscreen  FullscreenRequest = "exit"
)

// Fullscreen mirrors the host's native fullscreen state.
type Fullscreen struct {
	active bool
}

// Toggle returns the request to make given the state the host reports.
func (f *Fullscreen) Toggle(native bool) FullscreenRequest {
	f.active = native
	if native {
		return ExitFullscreen
	}
	return EnterFullscreen
}

// Sync records a native fullscreen change.
func (f *Fullscreen) Sync(native bool) {
	f.active = native
}

func (f Fullscreen) Active() bool { return f.active }

// Menu is the examples dropdown.
type Menu struct {
	open bool
}

func (m *Menu) Toggle() bool {
	m.open = !m.open
	return m.open
}

func (m *Menu) Close() { m.open = false }

func (m Menu) Open() bool { return m.open }

// Toast holds the single visible notice.
type Toast struct {
	text    string
	expires time.Time
}

// Show replaces any visible notice.
func (t *Toast) Show(text string, now time.Time) {
	t.text = text
	t.expires = now.Add(ToastLifetime)
}

// Current returns the notice visible at now.
func (t Toast) Current(now time.Time) (string, bool) {
	if t.text == "" || !now.Before(t.expires) {
		return "", false
	}
	return t.text, true
}

// Layout bundles the chrome state of one workspace.
type Layout struct {
	Font       Font
	Split      Split
	Fullscreen Fullscreen
	View       View
	Menu       Menu
	Toast      Toast
}

// New returns the startup layout.
func New() *Layout {
	return &Layout{
		Font:  NewFont(),
		Split: NewSplit(),
		View:  ViewConsole,
	}
}

// State is a serializable copy of a Layout.
type State struct {
	FontSize    int         `json:"fontSize"`
	EditorShare float64     `json:"editorShare"`
	OutputShare float64     `json:"outputShare"`
	Orientation Orientation `json:"orientation"`
	Fullscreen  bool        `json:"fullscreen"`
	View        View        `json:"view"`
	MenuOpen    bool        `json:"menuOpen"`
	Toast       string      `json:"toast,omitempty"`
}

// State snapshots l at now.
func (l *Layout) State(now time.Time) State {
	toast, _ := l.Toast.Current(now)
	return State{
		FontSize:    l.Font.Size(),
		EditorShare: l.Split.Editor(),
		OutputShare: l.Split.Output(),
		Orientation: l.Split.Orientation(),
		Fullscreen:  l.Fullscreen.Active(),
		View:        l.View,
		MenuOpen:    l.Menu.Open(),
		Toast:       toast,
	}
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
