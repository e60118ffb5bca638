package main

import (
	"context"
	"io"
	"os"

	"github.com/caffeineduck/pyplay/internal/logger"
	"github.com/caffeineduck/pyplay/internal/tui"
	"github.com/caffeineduck/pyplay/store"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// tuiNamespace keeps terminal saves apart from service sessions sharing the
// same store.
const tuiNamespace = "local"

var tuiCmd = &cobra.Command{
	Use:   "tui [file]",
	Short: "Open the full-screen playground",
	Long: `Open the editor, console and examples in the terminal.

Saved code lives in the configured store and is restored on the next start.
A file argument replaces the restored code.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().String("log-file", "", "Write logs here instead of discarding them")
	tuiCmd.Flags().String("download-dir", ".", "Where ctrl+d writes code.py")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The screen belongs to the program; logs go to a file or nowhere.
	logFile, _ := cmd.Flags().GetString("log-file")
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		logger.SetOutput(f)
	} else {
		logger.SetOutput(io.Discard)
	}
	defer logger.SetOutput(os.Stderr)

	runner, closeRunner, err := newRunner()
	if err != nil {
		return err
	}
	defer closeRunner()

	backend, err := store.Open(cfg.StoreDriver, cfg.StorePath)
	if err != nil {
		return err
	}
	defer backend.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ws, err := newWorkspace(ctx, runner, store.Scope(backend, tuiNamespace))
	if err != nil {
		return err
	}
	defer ws.Close()

	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		ws.SetContent(string(data))
	}
	go ws.Autosave(ctx)

	dir, _ := cmd.Flags().GetString("download-dir")
	ws.SyncFullscreen(true)
	p := tea.NewProgram(tui.New(ws, tui.Options{DownloadDir: dir}), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
