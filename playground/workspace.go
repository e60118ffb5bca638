// Package playground is the view-model behind every pyplay front end. A
// Workspace owns the editor buffer, the output pane, the run lifecycle, the
// input bridge, persistence and the layout chrome, and publishes each change
// as an Event.
//
// Front ends call Workspace methods in response to user actions and render
// the event stream (or Snapshot) however they like.
package playground

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/caffeineduck/pyplay/graphics"
	"github.com/caffeineduck/pyplay/hostfunc"
	"github.com/caffeineduck/pyplay/language/python"
	"github.com/caffeineduck/pyplay/layout"
	"github.com/caffeineduck/pyplay/locale"
	"github.com/caffeineduck/pyplay/store"
)

// DefaultLimit is the run ceiling.
const DefaultLimit = 60 * time.Second

// DefaultAutosaveInterval is how often Autosave snapshots the editor.
const DefaultAutosaveInterval = 10 * time.Second

// ErrClosed is returned by operations on a closed workspace.
var ErrClosed = errors.New("workspace closed")

// Status is the status-line state.
type Status string

const (
	StatusReady   Status = "ready"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusError   Status = "error"
	StatusStopped Status = "stopped"
)

var statusMessages = map[Status]string{
	StatusReady:   locale.StatusReady,
	StatusRunning: locale.StatusRunning,
	StatusDone:    locale.StatusDone,
	StatusError:   locale.StatusError,
	StatusStopped: locale.StatusStopped,
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithRunner sets the program runner. Without one Run fails with
// ErrNoRunner.
func WithRunner(r Runner) Option {
	return func(w *Workspace) { w.runner = r }
}

// WithStore sets the slot backend. Defaults to an in-memory store.
func WithStore(b store.Backend) Option {
	return func(w *Workspace) { w.store = b }
}

// WithLocalizer sets the message language. Defaults to Korean.
func WithLocalizer(l *locale.Localizer) Option {
	return func(w *Workspace) { w.loc = l }
}

// WithLimit sets the run ceiling.
func WithLimit(d time.Duration) Option {
	return func(w *Workspace) {
		if d > 0 {
			w.limit = d
		}
	}
}

// WithAutosaveInterval sets the Autosave period.
func WithAutosaveInterval(d time.Duration) Option {
	return func(w *Workspace) {
		if d > 0 {
			w.autosaveEvery = d
		}
	}
}

// WithModules sets the lookup used for imports the interpreter cannot
// resolve. Defaults to the bundled Python modules.
func WithModules(lookup func(name string) (string, error)) Option {
	return func(w *Workspace) { w.modules = lookup }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Workspace) { w.now = now }
}

type runSession struct {
	id      uint64
	started time.Time
	cancel  context.CancelFunc
}

// Workspace is one playground session. All methods are safe for concurrent
// use.
type Workspace struct {
	mu      sync.Mutex
	editor  *Editor
	console Console
	layout  *layout.Layout
	canvas  *graphics.Canvas
	input   *InputBridge

	status  Status
	elapsed string
	run     *runSession
	runSeq  uint64

	runner        Runner
	store         store.Backend
	loc           *locale.Localizer
	classifier    *Classifier
	modules       func(name string) (string, error)
	limit         time.Duration
	autosaveEvery time.Duration
	now           func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
	runs   sync.WaitGroup

	seq  uint64
	subs map[*subscriber]struct{}
}

// NewWorkspace builds a workspace and restores the manually saved code, if
// any. ctx bounds the workspace's lifetime; Close ends it early.
func NewWorkspace(ctx context.Context, opts ...Option) (*Workspace, error) {
	w := &Workspace{
		editor:        NewEditor(""),
		layout:        layout.New(),
		canvas:        graphics.NewCanvas(),
		status:        StatusReady,
		limit:         DefaultLimit,
		autosaveEvery: DefaultAutosaveInterval,
		now:           time.Now,
		subs:          make(map[*subscriber]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.store == nil {
		w.store = store.NewMemory()
	}
	if w.loc == nil {
		w.loc = locale.Default().Localizer(locale.DefaultLanguage.String())
	}
	if w.modules == nil {
		w.modules = hostfunc.NewModuleTable(python.BuiltinModules()).Lookup
	}
	w.classifier = NewClassifier(w.loc, w.limit)
	w.input = NewInputBridge(w.showInput, w.echoInput)
	w.ctx, w.cancel = context.WithCancel(ctx)

	saved, err := w.store.Get(w.ctx, store.SlotCode)
	switch {
	case err == nil && saved != "":
		w.editor.SetContent(saved)
	case !errors.Is(err, store.ErrNotFound):
		w.cancel()
		return nil, fmt.Errorf("restore saved code: %w", err)
	}
	return w, nil
}

// Subscribe returns a channel of every subsequent event and a function that
// ends the subscription. The channel is closed when the subscription ends
// or the workspace closes.
func (w *Workspace) Subscribe() (<-chan Event, func()) {
	s := newSubscriber()
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		s.close()
		return s.out, func() {}
	}
	w.subs[s] = struct{}{}
	w.mu.Unlock()

	return s.out, func() {
		w.mu.Lock()
		delete(w.subs, s)
		w.mu.Unlock()
		s.close()
	}
}

// emit publishes e. w.mu must be held.
func (w *Workspace) emit(e Event) {
	w.seq++
	e.Seq = w.seq
	for s := range w.subs {
		s.push(e)
	}
}

// Close stops any run, ends every subscription and waits for the run
// goroutine to exit.
func (w *Workspace) Close() error {
	w.Stop()

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.cancel()
	for s := range w.subs {
		s.close()
	}
	w.subs = nil
	w.mu.Unlock()

	w.runs.Wait()
	return nil
}

// Wait blocks until the current run goroutine, if any, has returned.
func (w *Workspace) Wait() {
	w.runs.Wait()
}

// Localizer returns the workspace's message language.
func (w *Workspace) Localizer() *locale.Localizer {
	return w.loc
}

// Canvas returns the graphics view backing store.
func (w *Workspace) Canvas() *graphics.Canvas {
	return w.canvas
}

// Content returns the editor buffer.
func (w *Workspace) Content() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.editor.Content()
}

// SetContent replaces the editor buffer, as when the learner edits.
func (w *Workspace) SetContent(content string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setContentLocked(content)
}

func (w *Workspace) setContentLocked(content string) {
	w.editor.SetContent(content)
	w.emit(Event{Type: EventContent, Content: content})
	w.emitCursorLocked()
}

// Insert types text at the cursor.
func (w *Workspace) Insert(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.editor.Insert(text)
	w.emit(Event{Type: EventContent, Content: w.editor.Content()})
	w.emitCursorLocked()
}

// InsertTab handles the Tab key.
func (w *Workspace) InsertTab() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.editor.InsertTab()
	w.emit(Event{Type: EventContent, Content: w.editor.Content()})
	w.emitCursorLocked()
}

// SetCursor moves the editor cursor.
func (w *Workspace) SetCursor(c Cursor) Cursor {
	w.mu.Lock()
	defer w.mu.Unlock()
	c = w.editor.SetCursor(c)
	w.emitCursorLocked()
	return c
}

// Select sets the editor selection.
func (w *Workspace) Select(s Selection) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.editor.Select(s)
	w.emitCursorLocked()
}

// CursorText renders the cursor position for the status bar, one-based.
func (w *Workspace) CursorText() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cursorTextLocked()
}

func (w *Workspace) cursorTextLocked() string {
	c := w.editor.Cursor()
	return w.loc.T(locale.CursorPosition, map[string]any{"Line": c.Line + 1, "Col": c.Col + 1})
}

func (w *Workspace) emitCursorLocked() {
	c := w.editor.Cursor()
	w.emit(Event{Type: EventCursor, Cursor: &c, Text: w.cursorTextLocked()})
}

// ClearOutput empties the output pane and hides the input field.
func (w *Workspace) ClearOutput() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.console.Clear()
	w.emit(Event{Type: EventClear})
	w.emit(Event{Type: EventInput, InputVisible: false})
}

// Output returns the output pane's spans.
func (w *Workspace) Output() []Span {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.console.Spans()
}

// OutputText returns the output pane as plain text.
func (w *Workspace) OutputText() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.console.Text()
}

// Status returns the status-line state and its localized text.
func (w *Workspace) Status() (Status, string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status, w.loc.T(statusMessages[w.status])
}

// Elapsed returns the elapsed-time display of the last settled run.
func (w *Workspace) Elapsed() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.elapsed
}

func (w *Workspace) setStatusLocked(s Status) {
	w.status = s
	w.emit(Event{Type: EventStatus, Status: s, Text: w.loc.T(statusMessages[s]), Elapsed: w.elapsed})
}

func (w *Workspace) setViewLocked(v layout.View) {
	w.layout.View = v
	w.emit(Event{Type: EventView, View: v})
}

func (w *Workspace) toastLocked(id string) {
	text := w.loc.T(id)
	w.layout.Toast.Show(text, w.now())
	w.emit(Event{Type: EventToast, Text: text})
}

// Toast returns the visible notice.
func (w *Workspace) Toast() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.layout.Toast.Current(w.now())
}

// State is a full copy of the workspace for clients that attach late.
type State struct {
	// Seq is the sequence number of the last event reflected in the state.
	Seq          uint64            `json:"seq"`
	Content      string            `json:"content"`
	Cursor       Cursor            `json:"cursor"`
	CursorText   string            `json:"cursorText"`
	Output       []Span            `json:"output"`
	InputVisible bool              `json:"inputVisible"`
	InputPrompt  string            `json:"inputPrompt"`
	Status       Status            `json:"status"`
	StatusText   string            `json:"statusText"`
	Elapsed      string            `json:"elapsed"`
	Running      bool              `json:"running"`
	Layout       layout.State      `json:"layout"`
	Canvas       graphics.Snapshot `json:"canvas"`
	Language     string            `json:"language"`
}

// Snapshot copies the whole workspace state.
func (w *Workspace) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{
		Seq:          w.seq,
		Content:      w.editor.Content(),
		Cursor:       w.editor.Cursor(),
		CursorText:   w.cursorTextLocked(),
		Output:       w.console.Spans(),
		InputVisible: w.console.InputVisible(),
		InputPrompt:  w.loc.T(locale.InputPrompt),
		Status:       w.status,
		StatusText:   w.loc.T(statusMessages[w.status]),
		Elapsed:      w.elapsed,
		Running:      w.run != nil,
		Layout:       w.layout.State(w.now()),
		Canvas:       w.canvas.Snapshot(),
		Language:     w.loc.Language(),
	}
}
