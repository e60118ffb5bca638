package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/caffeineduck/pyplay/hostfunc"
	"github.com/caffeineduck/pyplay/internal/logger"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

var (
	// ErrTimeLimit reports that a run hit its execution ceiling. The message
	// keeps the interpreter's own wording so callers can pattern-match it.
	ErrTimeLimit = errors.New("TimeLimitError: program exceeded run time limit")
	// ErrCancelled reports that the caller cancelled the run.
	ErrCancelled = errors.New("run cancelled")
	ErrClosed    = errors.New("executor closed")
)

// Result holds the outcome of one run.
type Result struct {
	// Output is everything the program wrote to stdout.
	Output string
	// Stderr is the non-protocol stderr text, usually a traceback.
	Stderr   string
	Duration time.Duration
	Error    error
}

// Executor manages the WASM runtime and compiled module caching.
type Executor struct {
	runtime  wazero.Runtime
	cache    wazero.CompilationCache
	compiled map[string]wazero.CompiledModule
	registry *hostfunc.Registry
	mu       sync.RWMutex
	closed   bool
}

// New creates an Executor. Functions in registry are available to every run.
func New(registry *hostfunc.Registry, opts ...ExecutorOption) (*Executor, error) {
	cfg := defaultExecutorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx := context.Background()

	var cache wazero.CompilationCache
	var err error

	if cfg.diskCache {
		cacheDir := cfg.cacheDir
		if cacheDir == "" {
			cacheDir = DefaultCacheDir()
		}
		cache, err = wazero.NewCompilationCacheWithDir(cacheDir)
		if err != nil {
			return nil, fmt.Errorf("create disk cache: %w", err)
		}
	}

	rtConfig := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cache != nil {
		rtConfig = rtConfig.WithCompilationCache(cache)
	}
	if cfg.memoryLimitPages > 0 {
		rtConfig = rtConfig.WithMemoryLimitPages(cfg.memoryLimitPages)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		if cache != nil {
			cache.Close(ctx)
		}
		rt.Close(ctx)
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}

	if registry == nil {
		registry = hostfunc.NewRegistry()
	}

	e := &Executor{
		runtime:  rt,
		cache:    cache,
		compiled: make(map[string]wazero.CompiledModule),
		registry: registry,
	}

	for _, lang := range cfg.precompile {
		if _, err := e.getCompiled(ctx, lang); err != nil {
			e.Close()
			return nil, fmt.Errorf("precompile %s: %w", lang.Name(), err)
		}
	}

	return e, nil
}

// Run executes code in a fresh module instance. It returns when the program
// exits, fails, hits the time ceiling, or ctx is cancelled. Cancellation is
// cooperative: wazero aborts the module at its next function call or loop
// back-edge, so stdout written before that point is still delivered.
func (e *Executor) Run(ctx context.Context, lang Language, code string, opts ...Option) Result {
	start := time.Now()

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return Result{Error: ErrClosed}
	}

	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	// Host calls still parked (an unanswered input request) are released
	// when Run returns.
	ctx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	compiled, err := e.getCompiled(ctx, lang)
	if err != nil {
		return Result{Error: err, Duration: time.Since(start)}
	}

	registry := e.registry.Clone()
	registry.Register(hostfunc.FnTimeNow, hostfunc.TimeNow)
	for name, fn := range cfg.hostFuncs {
		registry.Register(name, fn)
	}

	stdout := newRunOutput(cfg.stdout)
	stdinReader, stdinWriter := io.Pipe()
	protocol := newProtocolHandler(ctx, registry, stdinWriter)

	// A guest parked on its stdin read never reaches a wazero check point,
	// so unblock the read once the run is over.
	stop := context.AfterFunc(ctx, func() {
		stdinReader.CloseWithError(ctx.Err())
	})
	defer stop()

	args := lang.Args(lang.WrapCode(code))

	moduleConfig := wazero.NewModuleConfig().
		WithStdout(stdout).
		WithStderr(protocol).
		WithStdin(stdinReader).
		WithArgs(args...).
		WithName("")

	for k, v := range cfg.env {
		moduleConfig = moduleConfig.WithEnv(k, v)
	}

	errCh := make(chan error, 1)
	go func() {
		mod, err := e.runtime.InstantiateModule(ctx, compiled, moduleConfig)
		if mod != nil {
			mod.Close(context.Background())
		}
		stdinWriter.Close()
		errCh <- err
	}()

	err = <-errCh

	result := Result{
		Output:   stdout.String(),
		Stderr:   protocol.Stderr(),
		Duration: time.Since(start),
	}

	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 0 && ctx.Err() == nil {
		err = nil
	}

	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			result.Error = fmt.Errorf("%w (%v)", ErrTimeLimit, cfg.timeout)
		case errors.Is(ctx.Err(), context.Canceled):
			result.Error = ErrCancelled
		default:
			result.Error = fmt.Errorf("execution failed: %w", err)
		}
	}

	return result
}

// getCompiled returns a cached compiled module, compiling if necessary.
func (e *Executor) getCompiled(ctx context.Context, lang Language) (wazero.CompiledModule, error) {
	name := lang.Name()

	e.mu.RLock()
	if compiled, ok := e.compiled[name]; ok {
		e.mu.RUnlock()
		return compiled, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if compiled, ok := e.compiled[name]; ok {
		return compiled, nil
	}

	start := time.Now()
	compiled, err := e.runtime.CompileModule(ctx, lang.Module())
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	logger.Debugf("compiled %s (%d bytes) in %v", name, len(lang.Module()), time.Since(start))

	e.compiled[name] = compiled
	return compiled, nil
}

// Close releases all resources held by the Executor.
func (e *Executor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	ctx := context.Background()

	var errs []error
	if err := e.runtime.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if e.cache != nil {
		if err := e.cache.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// DefaultCacheDir is where WithDiskCache keeps compiled modules when no
// directory is given.
func DefaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "pyplay")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "pyplay")
	}
	return filepath.Join(os.TempDir(), "pyplay-cache")
}
