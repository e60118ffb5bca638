package playground

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/caffeineduck/pyplay/executor"
	"github.com/caffeineduck/pyplay/hostfunc"
)

// RunRequest is one program handed to a Runner together with its hooks.
type RunRequest struct {
	Code  string
	Limit time.Duration
	// Stdout receives program output as it is written.
	Stdout io.Writer
	// Input answers the program's input() calls.
	Input func(ctx context.Context, prompt string) (string, error)
	// Draw receives turtle commands.
	Draw func(ctx context.Context, req hostfunc.TurtleRequest) error
	// Modules resolves imports the interpreter cannot satisfy itself.
	Modules func(name string) (string, error)
}

// Runner executes programs. Run blocks until the program settles and
// returns nil on success. A failure's Error text is what the learner sees
// beneath the classified summary.
type Runner interface {
	Run(ctx context.Context, req RunRequest) error
}

// RunError carries the interpreter's error text.
type RunError struct {
	Text string
	Err  error
}

func (e *RunError) Error() string { return e.Text }

func (e *RunError) Unwrap() error { return e.Err }

// WASMRunner runs programs on an executor.Executor.
type WASMRunner struct {
	exec *executor.Executor
	lang executor.Language
}

// NewWASMRunner binds an executor and a language.
func NewWASMRunner(exec *executor.Executor, lang executor.Language) *WASMRunner {
	return &WASMRunner{exec: exec, lang: lang}
}

// Run implements Runner.
func (r *WASMRunner) Run(ctx context.Context, req RunRequest) error {
	opts := []executor.Option{executor.WithTimeout(req.Limit)}
	if req.Stdout != nil {
		opts = append(opts, executor.WithStdout(req.Stdout))
	}
	if req.Input != nil {
		opts = append(opts, executor.WithHostFunc(hostfunc.FnInputRequest, hostfunc.NewInput(req.Input)))
	}
	if req.Draw != nil {
		opts = append(opts, executor.WithHostFunc(hostfunc.FnTurtle, hostfunc.NewTurtle(req.Draw)))
	}
	if req.Modules != nil {
		opts = append(opts, executor.WithHostFunc(hostfunc.FnModuleRead, hostfunc.NewModuleReader(req.Modules)))
	}

	result := r.exec.Run(ctx, r.lang, req.Code, opts...)
	if result.Error == nil {
		return nil
	}
	return &RunError{Text: errorText(result), Err: result.Error}
}

// errorText picks the line the learner should see. The Python prelude ends
// stderr with a one-line "Type: message on line N" summary; without it the
// executor's own error stands in.
func errorText(result executor.Result) string {
	if errors.Is(result.Error, executor.ErrTimeLimit) || errors.Is(result.Error, executor.ErrCancelled) {
		return result.Error.Error()
	}
	if line := lastLine(result.Stderr); line != "" {
		return line
	}
	return result.Error.Error()
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
