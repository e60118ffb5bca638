package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/caffeineduck/pyplay/gallery"
	"github.com/caffeineduck/pyplay/playground"
	"github.com/caffeineduck/pyplay/store"
	"github.com/spf13/cobra"
)

func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestCLIHelp(t *testing.T) {
	output, err := executeCommand(rootCmd, "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedPhrases := []string{
		"pyplay",
		"WebAssembly",
		"run",
		"tui",
		"serve",
		"examples",
		"cache",
		"--locale",
		"--store",
	}

	for _, phrase := range expectedPhrases {
		if !strings.Contains(output, phrase) {
			t.Errorf("help output should contain %q", phrase)
		}
	}
}

func TestCLIRunHelp(t *testing.T) {
	output, err := executeCommand(rootCmd, "run", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, phrase := range []string{"--code", "--canvas-width", "--limit", "--wasm"} {
		if !strings.Contains(output, phrase) {
			t.Errorf("run help output should contain %q", phrase)
		}
	}
}

func TestCLIServeHelp(t *testing.T) {
	output, err := executeCommand(rootCmd, "serve", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, phrase := range []string{"--addr", "/v1/sessions", "/health", "/ws", "/download"} {
		if !strings.Contains(output, phrase) {
			t.Errorf("serve help output should contain %q", phrase)
		}
	}
}

func TestCLIExamplesList(t *testing.T) {
	output, err := executeCommand(rootCmd, "examples")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, ex := range gallery.All() {
		if !strings.Contains(output, ex.Name) || !strings.Contains(output, ex.Title) {
			t.Errorf("examples output should list %q", ex.Name)
		}
	}
}

func TestCLIExamplesPrint(t *testing.T) {
	output, err := executeCommand(rootCmd, "examples", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := gallery.Get("hello")
	if output != want.Code {
		t.Errorf("examples hello = %q, want %q", output, want.Code)
	}

	if _, err := executeCommand(rootCmd, "examples", "nope"); err == nil {
		t.Error("expected error for unknown example")
	}
}

func TestCLICacheClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "module.bin"), []byte("test"), 0644)
	t.Setenv("PYPLAY_CACHE_DIR", dir)

	output, err := executeCommand(rootCmd, "cache", "clear")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, "Cache cleared.") {
		t.Errorf("unexpected output: %q", output)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("cache directory should be removed")
	}
}

func TestCLIInvalidConfig(t *testing.T) {
	t.Setenv("PYPLAY_MEMORY_LIMIT", "3mb")

	_, err := executeCommand(rootCmd, "examples")
	if err == nil {
		t.Fatal("expected error for invalid memory limit")
	}
	if !strings.Contains(err.Error(), "memory limit") {
		t.Errorf("error should mention memory limit, got: %v", err)
	}
}

func TestCLICompletionCommands(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "completion" {
			found = true
			break
		}
	}
	if !found {
		t.Error("completion command should exist (provided by cobra)")
	}
}

type runnerFunc func(ctx context.Context, req playground.RunRequest) error

func (f runnerFunc) Run(ctx context.Context, req playground.RunRequest) error { return f(ctx, req) }

// scriptedLines answers input() from a fixed list and records prompts.
type scriptedLines struct {
	mu      sync.Mutex
	answers []string
	prompts []string
}

func (s *scriptedLines) ReadLine(prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	line := s.answers[0]
	s.answers = s.answers[1:]
	return line, nil
}

func newCLIWorkspace(t *testing.T, code string, runner playground.Runner) *playground.Workspace {
	t.Helper()
	ws, err := playground.NewWorkspace(context.Background(),
		playground.WithRunner(runner),
		playground.WithStore(store.NewMemory()),
		playground.WithLimit(5*time.Second),
	)
	if err != nil {
		t.Fatalf("new workspace: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	ws.SetContent(code)
	return ws
}

func TestRunProgramOutput(t *testing.T) {
	ws := newCLIWorkspace(t, "print('hi')", runnerFunc(func(ctx context.Context, req playground.RunRequest) error {
		_, err := io.WriteString(req.Stdout, "hi\n")
		return err
	}))

	var out, errOut bytes.Buffer
	status, err := runProgram(context.Background(), ws, &scriptedLines{}, &out, &errOut)
	if err != nil {
		t.Fatalf("runProgram: %v", err)
	}
	if status != playground.StatusDone {
		t.Errorf("status = %q", status)
	}
	if out.String() != "hi\n" {
		t.Errorf("stdout = %q", out.String())
	}
	if errOut.Len() == 0 {
		t.Error("completion notice should go to stderr")
	}
}

func TestRunProgramError(t *testing.T) {
	ws := newCLIWorkspace(t, "print(x)", runnerFunc(func(ctx context.Context, req playground.RunRequest) error {
		return &playground.RunError{Text: "NameError: name 'x' is not defined"}
	}))

	var out, errOut bytes.Buffer
	status, err := runProgram(context.Background(), ws, &scriptedLines{}, &out, &errOut)
	if err != nil {
		t.Fatalf("runProgram: %v", err)
	}
	if status != playground.StatusError {
		t.Errorf("status = %q", status)
	}
	if !strings.Contains(errOut.String(), "NameError") {
		t.Errorf("stderr should carry the error, got %q", errOut.String())
	}
}

func TestRunProgramInput(t *testing.T) {
	ws := newCLIWorkspace(t, "input()", runnerFunc(func(ctx context.Context, req playground.RunRequest) error {
		io.WriteString(req.Stdout, "시작\n")
		name, err := req.Input(ctx, "이름: ")
		if err != nil {
			return err
		}
		_, err = io.WriteString(req.Stdout, "안녕, "+name+"\n")
		return err
	}))

	lines := &scriptedLines{answers: []string{"철수"}}
	var out, errOut bytes.Buffer
	status, err := runProgram(context.Background(), ws, lines, &out, &errOut)
	if err != nil {
		t.Fatalf("runProgram: %v", err)
	}
	if status != playground.StatusDone {
		t.Fatalf("status = %q", status)
	}
	if out.String() != "시작\n이름: 안녕, 철수\n" {
		t.Errorf("stdout = %q", out.String())
	}
	if len(lines.prompts) != 1 || lines.prompts[0] != "이름: " {
		t.Errorf("readline prompt = %q", lines.prompts)
	}
}

func TestRunProgramEndOfInputStops(t *testing.T) {
	ws := newCLIWorkspace(t, "input()", runnerFunc(func(ctx context.Context, req playground.RunRequest) error {
		_, err := req.Input(ctx, "")
		return err
	}))

	var out, errOut bytes.Buffer
	status, err := runProgram(context.Background(), ws, &scriptedLines{}, &out, &errOut)
	if err != nil {
		t.Fatalf("runProgram: %v", err)
	}
	if status != playground.StatusStopped {
		t.Errorf("status = %q", status)
	}
}

func TestRunProgramInterrupt(t *testing.T) {
	ws := newCLIWorkspace(t, "while True: pass", runnerFunc(func(ctx context.Context, req playground.RunRequest) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out, errOut bytes.Buffer
	status, err := runProgram(ctx, ws, &scriptedLines{}, &out, &errOut)
	if err != nil {
		t.Fatalf("runProgram: %v", err)
	}
	if status != playground.StatusStopped {
		t.Errorf("status = %q", status)
	}
	if ws.Running() {
		t.Error("run should be stopped")
	}
}

func TestRunProgramEmpty(t *testing.T) {
	ws := newCLIWorkspace(t, "   ", nil)

	var out, errOut bytes.Buffer
	if _, err := runProgram(context.Background(), ws, &scriptedLines{}, &out, &errOut); err != playground.ErrEmptySource {
		t.Errorf("expected ErrEmptySource, got %v", err)
	}
}

func TestTail(t *testing.T) {
	tests := []struct {
		prev, text, want string
	}{
		{"", "abc", "abc"},
		{"ab", "c", "abc"},
		{"ab", "c\nde", "de"},
		{"ab", "c\n", ""},
	}
	for _, tc := range tests {
		if got := tail(tc.prev, tc.text); got != tc.want {
			t.Errorf("tail(%q, %q) = %q, want %q", tc.prev, tc.text, got, tc.want)
		}
	}
}
