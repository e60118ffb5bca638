package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caffeineduck/pyplay/executor"
	"github.com/caffeineduck/pyplay/hostfunc"
	"github.com/caffeineduck/pyplay/internal/config"
	"github.com/caffeineduck/pyplay/internal/logger"
	"github.com/caffeineduck/pyplay/language/python"
	"github.com/caffeineduck/pyplay/locale"
	"github.com/caffeineduck/pyplay/playground"
	"github.com/caffeineduck/pyplay/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pyplay",
	Short: "Beginner Python playground on WebAssembly",
	Long: `pyplay - a Python playground for beginners.

Programs run in a RustPython WebAssembly sandbox. input() prompts the
learner, import turtle draws to a canvas, and errors come back with a short
explanation. Use it from the terminal (run, tui) or serve it to browsers
(serve).`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// cfg is the resolved configuration, set before any command runs.
var cfg *config.Config

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default: $PYPLAY_CONFIG)")
	flags.String("wasm", "", "Path to the RustPython WASI binary (env PYPLAY_WASM)")
	flags.String("locale", "", "Message language: ko, en")
	flags.Duration("limit", 0, "Run time limit (default 60s)")
	flags.String("memory", "", "Memory limit: 16mb, 64mb, 256mb, 1gb")
	flags.Bool("no-cache", false, "Disable compilation cache")
	flags.String("store", "", "Save slot backend: memory, file, sqlite")
	flags.String("store-path", "", "Save slot file or database path")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	flags.Bool("debug", false, "Verbose logging")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")

	var o config.Overrides
	if flags.Changed("wasm") {
		v, _ := flags.GetString("wasm")
		o.WASMPath = &v
	}
	if flags.Changed("locale") {
		v, _ := flags.GetString("locale")
		o.Locale = &v
	}
	if flags.Changed("limit") {
		v, _ := flags.GetDuration("limit")
		o.ExecLimit = &v
	}
	if flags.Changed("memory") {
		v, _ := flags.GetString("memory")
		o.MemoryLimit = &v
	}
	if flags.Changed("no-cache") {
		v, _ := flags.GetBool("no-cache")
		v = !v
		o.DiskCache = &v
	}
	if flags.Changed("store") {
		v, _ := flags.GetString("store")
		o.StoreDriver = &v
	}
	if flags.Changed("store-path") {
		v, _ := flags.GetString("store-path")
		o.StorePath = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		o.LogLevel = &v
	}
	if flags.Changed("debug") {
		v, _ := flags.GetBool("debug")
		o.Debug = &v
	}
	if flags.Lookup("addr") != nil && flags.Changed("addr") {
		v, _ := flags.GetString("addr")
		o.Addr = &v
	}

	loaded, err := config.Load(path, o)
	if err != nil {
		return err
	}
	cfg = loaded

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if cfg.Debug && level > logger.LevelDebug {
		level = logger.LevelDebug
	}
	logger.SetLevel(level)
	return nil
}

// newRunner loads the interpreter and builds an executor-backed runner. The
// returned close function releases the executor.
func newRunner() (playground.Runner, func(), error) {
	lang, err := python.Load(cfg.WASMPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set --wasm or PYPLAY_WASM)", err)
	}

	registry := hostfunc.NewRegistry()
	registry.Register(hostfunc.FnTimeNow, hostfunc.TimeNow)

	execOpts := []executor.ExecutorOption{executor.WithPrecompile(lang)}
	if cfg.DiskCache {
		execOpts = append(execOpts, executor.WithDiskCache(cfg.CacheDir))
	}
	if pages := executor.ParseMemoryLimit(cfg.MemoryLimit); pages > 0 {
		execOpts = append(execOpts, executor.WithMemoryLimit(pages))
	}

	start := time.Now()
	exec, err := executor.New(registry, execOpts...)
	if err != nil {
		return nil, nil, err
	}
	logger.Debugf("interpreter ready in %v", time.Since(start))

	return playground.NewWASMRunner(exec, lang), func() { exec.Close() }, nil
}

func newWorkspace(ctx context.Context, runner playground.Runner, backend store.Backend) (*playground.Workspace, error) {
	return playground.NewWorkspace(ctx,
		playground.WithRunner(runner),
		playground.WithStore(backend),
		playground.WithLocalizer(locale.Default().Localizer(cfg.Locale)),
		playground.WithLimit(cfg.ExecLimit),
		playground.WithAutosaveInterval(cfg.AutosaveInterval),
	)
}

// readSource picks the program from -c, a file argument or piped stdin.
// ok is false when none was given.
func readSource(cmd *cobra.Command, args []string) (source string, ok bool, err error) {
	code, _ := cmd.Flags().GetString("code")
	switch {
	case code != "":
		return code, true, nil
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", false, err
		}
		return string(data), true, nil
	}

	stat, err := os.Stdin.Stat()
	if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
		return "", false, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", false, err
	}
	return string(data), len(data) > 0, nil
}
