package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/caffeineduck/pyplay/playground"
	"github.com/caffeineduck/pyplay/store"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a Python program in the terminal",
	Long: `Run a Python program once, answering input() from the terminal.

Source comes from -c, a file argument or piped stdin. Turtle drawings are
printed as text after the program ends.`,
	Example: `  pyplay run hello.py
  pyplay run -c "print('안녕하세요')"
  echo "print(1 + 1)" | pyplay run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringP("code", "c", "", "Code to run")
	runCmd.Flags().Int("canvas-width", 60, "Columns for the turtle drawing")
	runCmd.Flags().Int("canvas-height", 20, "Rows for the turtle drawing")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	source, ok, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("no code provided (use a file argument, -c, or pipe to stdin)")
	}

	runner, closeRunner, err := newRunner()
	if err != nil {
		return err
	}
	defer closeRunner()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Saving belongs to the interactive front ends.
	ws, err := newWorkspace(ctx, runner, store.NewMemory())
	if err != nil {
		return err
	}
	defer ws.Close()
	ws.SetContent(source)

	lines, closeLines := terminalLines(len(args) == 0 && !cmd.Flags().Changed("code"))
	defer closeLines()

	status, err := runProgram(ctx, ws, lines, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if ws.Canvas().Len() > 0 {
		w, _ := cmd.Flags().GetInt("canvas-width")
		h, _ := cmd.Flags().GetInt("canvas-height")
		fmt.Fprintln(cmd.OutOrStdout(), ws.Canvas().RenderASCII(w, h))
	}

	if status != playground.StatusDone {
		os.Exit(1)
	}
	return nil
}

// lineReader answers one input() call.
type lineReader interface {
	ReadLine(prompt string) (string, error)
}

type readlineReader struct {
	rl *readline.Instance
}

func (r *readlineReader) ReadLine(prompt string) (string, error) {
	// The prompt is already printed; redraw it in place.
	if prompt != "" {
		io.WriteString(r.rl.Config.Stdout, "\r")
	}
	r.rl.SetPrompt(prompt)
	return r.rl.Readline()
}

// bufioReader reads lines from a pipe. The prompt is already on screen.
type bufioReader struct {
	r *bufio.Reader
}

func (b *bufioReader) ReadLine(string) (string, error) {
	line, err := b.r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// terminalLines picks readline for a terminal and a plain reader otherwise.
// pipedSource means stdin held the program, so input() has nothing to read.
func terminalLines(pipedSource bool) (lineReader, func()) {
	if pipedSource {
		return &bufioReader{r: bufio.NewReader(strings.NewReader(""))}, func() {}
	}
	if !readline.IsTerminal(int(os.Stdin.Fd())) {
		return &bufioReader{r: bufio.NewReader(os.Stdin)}, func() {}
	}
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "^C",
		EOFPrompt:       "",
	})
	if err != nil {
		return &bufioReader{r: bufio.NewReader(os.Stdin)}, func() {}
	}
	return &readlineReader{rl: rl}, func() { rl.Close() }
}

// runProgram runs the workspace content and streams its console to out and
// errOut until the run settles. Program text goes to out, notices and
// errors to errOut. input() requests are answered from lines; an interrupt
// or end of input stops the run.
func runProgram(ctx context.Context, ws *playground.Workspace, lines lineReader, out, errOut io.Writer) (playground.Status, error) {
	events, unsubscribe := ws.Subscribe()
	defer unsubscribe()

	if err := ws.Run(); err != nil {
		return playground.StatusReady, err
	}

	// partial is the unterminated tail of program output, used as the
	// readline prompt so redraws keep it on screen.
	var partial string
	for {
		select {
		case <-ctx.Done():
			ws.Stop()
			ws.Wait()
			status, _ := ws.Status()
			return status, nil

		case e, ok := <-events:
			if !ok {
				status, _ := ws.Status()
				return status, nil
			}
			switch e.Type {
			case playground.EventOutput:
				if e.Span == nil {
					continue
				}
				switch e.Span.Kind {
				case playground.SpanInput:
					partial = ""
				case playground.SpanNormal:
					io.WriteString(out, e.Span.Text)
					partial = tail(partial, e.Span.Text)
				default:
					io.WriteString(errOut, e.Span.Text)
				}
			case playground.EventInput:
				if e.InputVisible {
					go answer(ws, lines, partial)
				}
			case playground.EventRunning:
				if !e.Running {
					status, _ := ws.Status()
					return status, nil
				}
			}
		}
	}
}

func answer(ws *playground.Workspace, lines lineReader, prompt string) {
	line, err := lines.ReadLine(prompt)
	if err != nil {
		// ctrl+c, ctrl+d or a closed pipe.
		ws.Stop()
		return
	}
	// A stopped run has nothing to answer.
	_ = ws.SubmitInput(line)
}

// tail returns the text after the last newline of prev+text.
func tail(prev, text string) string {
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		return text[i+1:]
	}
	return prev + text
}
