package playground

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/caffeineduck/pyplay/gallery"
	"github.com/caffeineduck/pyplay/graphics"
	"github.com/caffeineduck/pyplay/hostfunc"
	"github.com/caffeineduck/pyplay/internal/logger"
	"github.com/caffeineduck/pyplay/layout"
	"github.com/caffeineduck/pyplay/locale"
)

var (
	// ErrRunning is returned by Run while a run is active. Nothing changes.
	ErrRunning = errors.New("a run is already active")
	// ErrEmptySource is returned by Run for blank editor content.
	ErrEmptySource = errors.New("no code to run")
	// ErrNoRunner is returned by Run when the workspace has no runner.
	ErrNoRunner = errors.New("no runner configured")
	// ErrStaleRun is returned to host calls from a run that was stopped.
	ErrStaleRun = errors.New("run is no longer active")
)

// Running reports whether a run is active. The stop control is enabled
// exactly when this is true.
func (w *Workspace) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.run != nil
}

// Run starts the editor content on the runner and returns without waiting
// for it to finish.
func (w *Workspace) Run() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	if w.run != nil {
		return ErrRunning
	}
	code := w.editor.Content()
	if strings.TrimSpace(code) == "" {
		w.toastLocked(locale.NoCode)
		return ErrEmptySource
	}
	if w.runner == nil {
		return ErrNoRunner
	}

	w.runSeq++
	ctx, cancel := context.WithCancel(w.ctx)
	sess := &runSession{id: w.runSeq, started: w.now(), cancel: cancel}
	w.run = sess

	w.elapsed = ""
	w.console.Clear()
	w.emit(Event{Type: EventClear})
	w.emit(Event{Type: EventInput, InputVisible: false})
	w.setViewLocked(gallery.ViewFor(code))
	w.canvas.Reset()
	w.emit(Event{Type: EventDraw, Shape: &graphics.Shape{Op: graphics.OpClear}})
	w.setStatusLocked(StatusRunning)
	w.emit(Event{Type: EventRunning, Running: true})

	logger.Debugf("run %d started (%d bytes)", sess.id, len(code))

	w.runs.Add(1)
	go w.execute(ctx, sess, code)
	return nil
}

func (w *Workspace) execute(ctx context.Context, sess *runSession, code string) {
	defer w.runs.Done()

	out := &runWriter{w: w, id: sess.id}
	err := w.runner.Run(ctx, RunRequest{
		Code:   code,
		Limit:  w.limit,
		Stdout: out,
		Input: func(ctx context.Context, prompt string) (string, error) {
			if !w.isCurrent(sess.id) {
				return "", ErrStaleRun
			}
			return w.input.Request(ctx, sess.id, prompt)
		},
		Draw: func(ctx context.Context, req hostfunc.TurtleRequest) error {
			return w.draw(sess.id, req)
		},
		Modules: w.modules,
	})
	out.flush()
	w.finish(sess, err)
}

func (w *Workspace) isCurrent(id uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.run != nil && w.run.id == id
}

func (w *Workspace) draw(id uint64, req hostfunc.TurtleRequest) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.run == nil || w.run.id != id {
		return ErrStaleRun
	}
	shape, err := w.canvas.Apply(req)
	if err != nil {
		return err
	}
	w.emit(Event{Type: EventDraw, Shape: &shape})
	return nil
}

// finish settles a run. A run that was stopped has already been settled and
// its outcome is dropped.
func (w *Workspace) finish(sess *runSession, runErr error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.run != sess {
		logger.Debugf("run %d settled after stop, outcome discarded", sess.id)
		return
	}
	sess.cancel()
	w.run = nil
	w.input.Cancel()

	seconds := fmt.Sprintf("%.2f", w.now().Sub(sess.started).Seconds())
	w.elapsed = w.loc.T(locale.Elapsed, map[string]any{"Seconds": seconds})

	if runErr == nil {
		w.appendLocked(SpanInfo, "\n")
		w.appendLocked(SpanInfo, w.loc.T(locale.RunComplete, map[string]any{"Seconds": seconds}))
		w.setStatusLocked(StatusDone)
		logger.Infof("run %d done in %ss", sess.id, seconds)
	} else {
		w.setViewLocked(layout.ViewConsole)
		w.appendLocked(SpanNormal, "\n")
		w.appendLocked(SpanError, w.classifier.Classify(runErr.Error()))
		w.setStatusLocked(StatusError)
		logger.Infof("run %d failed after %ss: %v", sess.id, seconds, runErr)
	}
	w.endRunLocked()
}

// endRunLocked clears the running state: stop disabled, input hidden.
func (w *Workspace) endRunLocked() {
	w.console.HideInput()
	w.emit(Event{Type: EventInput, InputVisible: false})
	w.emit(Event{Type: EventRunning, Running: false})
}

// Stop cancels the active run. The interpreter notices at its next check
// point; the workspace is idle again immediately. Stop reports whether a run
// was active.
func (w *Workspace) Stop() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.run == nil {
		return false
	}
	sess := w.run
	w.run = nil
	sess.cancel()
	w.input.Cancel()

	w.appendLocked(SpanInfo, w.loc.T(locale.RunStopped))
	w.setStatusLocked(StatusStopped)
	w.endRunLocked()
	logger.Infof("run %d stopped", sess.id)
	return true
}

// SubmitInput answers the pending input request.
func (w *Workspace) SubmitInput(value string) error {
	return w.input.Submit(value)
}

// PendingInput returns the prompt of the outstanding input request.
func (w *Workspace) PendingInput() (string, bool) {
	return w.input.Pending()
}

// showInput puts a run's prompt on the console. A run that is no longer
// current gets ErrStaleRun and nothing is shown.
func (w *Workspace) showInput(id uint64, prompt string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.run == nil || w.run.id != id {
		return ErrStaleRun
	}
	w.setViewLocked(layout.ViewConsole)
	if prompt != "" {
		w.appendLocked(SpanNormal, prompt)
	}
	w.console.ShowInput()
	w.emit(Event{Type: EventInput, InputVisible: true, Text: w.loc.T(locale.InputPrompt)})
	return nil
}

func (w *Workspace) echoInput(value string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.console.HideInput()
	w.emit(Event{Type: EventInput, InputVisible: false})
	w.appendLocked(SpanInput, value+"\n")
}

func (w *Workspace) appendLocked(kind SpanKind, text string) {
	span := w.console.Append(kind, text)
	w.emit(Event{Type: EventOutput, Span: &span})
}

func (w *Workspace) output(id uint64, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.run == nil || w.run.id != id {
		return
	}
	w.appendLocked(SpanNormal, text)
}

// runWriter forwards program output to the console, holding back a UTF-8
// sequence split across writes.
type runWriter struct {
	w       *Workspace
	id      uint64
	partial []byte
}

func (r *runWriter) Write(p []byte) (int, error) {
	buf := append(r.partial, p...)
	cut := completePrefix(buf)
	r.partial = append([]byte(nil), buf[cut:]...)
	if cut > 0 {
		r.w.output(r.id, string(buf[:cut]))
	}
	return len(p), nil
}

func (r *runWriter) flush() {
	if len(r.partial) > 0 {
		r.w.output(r.id, string(r.partial))
		r.partial = nil
	}
}

// completePrefix returns the length of buf without a trailing incomplete
// rune.
func completePrefix(buf []byte) int {
	for i := 1; i < utf8.UTFMax && i <= len(buf); i++ {
		start := len(buf) - i
		if !utf8.RuneStart(buf[start]) {
			continue
		}
		if !utf8.FullRune(buf[start:]) {
			return start
		}
		break
	}
	return len(buf)
}

// RunElapsed reports how long the active run has been going.
func (w *Workspace) RunElapsed() (time.Duration, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.run == nil {
		return 0, false
	}
	return w.now().Sub(w.run.started), true
}
