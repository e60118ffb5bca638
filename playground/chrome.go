package playground

import (
	"context"
	"strings"

	"github.com/caffeineduck/pyplay/gallery"
	"github.com/caffeineduck/pyplay/layout"
	"github.com/caffeineduck/pyplay/locale"
)

// LoadExample puts a gallery snippet in the editor, shows the view it
// draws to and closes the examples menu.
func (w *Workspace) LoadExample(name string) error {
	ex, err := gallery.Get(name)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.setContentLocked(ex.Code)
	w.layout.Menu.Close()
	w.setViewLocked(ex.View)
	w.emitLayoutLocked()
	w.toastLocked(locale.ExampleLoaded)
	return nil
}

func (w *Workspace) emitLayoutLocked() {
	st := w.layout.State(w.now())
	w.emit(Event{Type: EventLayout, Layout: &st})
}

// Layout returns the chrome state.
func (w *Workspace) Layout() layout.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.layout.State(w.now())
}

// IncreaseFont grows the editor font by one step.
func (w *Workspace) IncreaseFont() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	size := w.layout.Font.Increase()
	w.emitLayoutLocked()
	return size
}

// DecreaseFont shrinks the editor font by one step.
func (w *Workspace) DecreaseFont() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	size := w.layout.Font.Decrease()
	w.emitLayoutLocked()
	return size
}

// SetFontSize sets the editor font, clamped to the allowed range.
func (w *Workspace) SetFontSize(n int) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	size := w.layout.Font.Set(n)
	w.emitLayoutLocked()
	return size
}

// DragSplit moves the pane divider to a pointer at pos inside a container of
// the given extent and returns the editor share.
func (w *Workspace) DragSplit(pos, extent float64) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	pct := w.layout.Split.Drag(pos, extent)
	w.emitLayoutLocked()
	return pct
}

// SetSplit sets the editor share directly.
func (w *Workspace) SetSplit(pct float64) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	pct = w.layout.Split.Set(pct)
	w.emitLayoutLocked()
	return pct
}

// SetViewport records the viewport width, which picks the split
// orientation.
func (w *Workspace) SetViewport(width int) layout.Orientation {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.layout.Split.SetViewport(width)
	w.emitLayoutLocked()
	return w.layout.Split.Orientation()
}

// ToggleFullscreen returns what the host should do given its reported
// fullscreen state.
func (w *Workspace) ToggleFullscreen(native bool) layout.FullscreenRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	req := w.layout.Fullscreen.Toggle(native)
	w.emit(Event{Type: EventFullscreen, Fullscreen: req})
	return req
}

// SyncFullscreen records a native fullscreen change.
func (w *Workspace) SyncFullscreen(native bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.layout.Fullscreen.Sync(native)
	w.emitLayoutLocked()
}

// SetView selects the output tab.
func (w *Workspace) SetView(v layout.View) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setViewLocked(v)
}

// ToggleMenu opens or closes the examples menu.
func (w *Workspace) ToggleMenu() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	open := w.layout.Menu.Toggle()
	w.emitLayoutLocked()
	return open
}

// CloseMenu closes the examples menu, as any click outside it does.
func (w *Workspace) CloseMenu() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.layout.Menu.Open() {
		return
	}
	w.layout.Menu.Close()
	w.emitLayoutLocked()
}

// Key is a key press from a front end.
type Key struct {
	Name  string `json:"key"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
	Shift bool   `json:"shift,omitempty"`
}

// KeyAction is what HandleKey did.
type KeyAction string

const (
	KeyNone KeyAction = ""
	KeyStop KeyAction = "stop"
	KeySave KeyAction = "save"
	KeyRun  KeyAction = "run"
	KeyTab  KeyAction = "tab"
)

// ActionFor maps a key press to a playground action: Escape stops, Ctrl or
// Cmd with S saves, Ctrl or Cmd with Enter runs, and a bare Tab indents.
func ActionFor(k Key) KeyAction {
	mod := k.Ctrl || k.Meta
	switch name := strings.ToLower(k.Name); {
	case name == "escape" || name == "esc":
		return KeyStop
	case mod && name == "s":
		return KeySave
	case mod && name == "enter":
		return KeyRun
	case !mod && !k.Shift && name == "tab":
		return KeyTab
	}
	return KeyNone
}

// HandleKey performs the action bound to k. Escape with nothing running
// does nothing and reports KeyNone.
func (w *Workspace) HandleKey(ctx context.Context, k Key) (KeyAction, error) {
	switch action := ActionFor(k); action {
	case KeyStop:
		if !w.Stop() {
			return KeyNone, nil
		}
		return action, nil
	case KeySave:
		return action, w.Save(ctx)
	case KeyRun:
		return action, w.Run()
	case KeyTab:
		w.InsertTab()
		return action, nil
	}
	return KeyNone, nil
}
