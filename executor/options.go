package executor

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/caffeineduck/pyplay/hostfunc"
)

// DefaultTimeout is the execution ceiling applied when no WithTimeout option
// is given.
const DefaultTimeout = 60 * time.Second

// Option configures a single run.
type Option func(*runConfig)

type runConfig struct {
	timeout   time.Duration
	stdout    io.Writer
	hostFuncs map[string]hostfunc.Func
	env       map[string]string
}

func defaultRunConfig() runConfig {
	return runConfig{
		timeout:   DefaultTimeout,
		hostFuncs: make(map[string]hostfunc.Func),
		env:       make(map[string]string),
	}
}

// WithTimeout sets the execution ceiling. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *runConfig) {
		c.timeout = d
	}
}

// WithStdout streams program output to w as it is written, in addition to
// collecting it into Result.Output.
func WithStdout(w io.Writer) Option {
	return func(c *runConfig) {
		c.stdout = w
	}
}

// WithHostFunc registers a run-scoped host function, shadowing any function
// of the same name in the executor's registry.
func WithHostFunc(name string, fn hostfunc.Func) Option {
	return func(c *runConfig) {
		c.hostFuncs[name] = fn
	}
}

// WithEnv sets an environment variable visible to the guest.
func WithEnv(key, value string) Option {
	return func(c *runConfig) {
		c.env[key] = value
	}
}

// ExecutorOption configures the Executor at creation time.
type ExecutorOption func(*executorConfig)

type executorConfig struct {
	diskCache        bool
	cacheDir         string
	precompile       []Language // Languages to precompile at startup
	memoryLimitPages uint32     // Max memory pages (each page = 64KB), 0 = default (4GB)
}

func defaultExecutorConfig() executorConfig {
	return executorConfig{}
}

// WithDiskCache enables a persistent compilation cache. Optionally provide a
// custom directory; otherwise uses ~/.cache/pyplay or XDG_CACHE_HOME/pyplay.
func WithDiskCache(dir ...string) ExecutorOption {
	return func(c *executorConfig) {
		c.diskCache = true
		if len(dir) > 0 && dir[0] != "" {
			c.cacheDir = dir[0]
		}
	}
}

// WithPrecompile compiles the specified languages at Executor creation time.
// This moves the compilation cost to startup rather than first execution.
func WithPrecompile(langs ...Language) ExecutorOption {
	return func(c *executorConfig) {
		c.precompile = langs
	}
}

// WithMemoryLimit sets the maximum memory available to WASM modules.
// Each page is 64KB. Default is 0 (no limit, up to 4GB).
func WithMemoryLimit(pages uint32) ExecutorOption {
	return func(c *executorConfig) {
		c.memoryLimitPages = pages
	}
}

// Memory limit constants for convenience.
const (
	MemoryLimit16MB  uint32 = 256   // 16 MB
	MemoryLimit64MB  uint32 = 1024  // 64 MB
	MemoryLimit256MB uint32 = 4096  // 256 MB
	MemoryLimit1GB   uint32 = 16384 // 1 GB
)

// ParseMemoryLimit maps 16mb, 64mb, 256mb or 1gb to a page count. Anything
// else yields 0, meaning the runtime default.
func ParseMemoryLimit(s string) uint32 {
	switch s {
	case "16mb", "16MB":
		return MemoryLimit16MB
	case "64mb", "64MB":
		return MemoryLimit64MB
	case "256mb", "256MB":
		return MemoryLimit256MB
	case "1gb", "1GB":
		return MemoryLimit1GB
	default:
		return 0
	}
}

// runOutput collects stdout and forwards each write to an optional sink.
type runOutput struct {
	sink io.Writer
	buf  bytes.Buffer
	mu   sync.Mutex
}

func newRunOutput(sink io.Writer) *runOutput {
	return &runOutput{sink: sink}
}

func (o *runOutput) Write(data []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buf.Write(data)
	if o.sink != nil {
		// A failing sink must not turn into an I/O error inside the guest.
		_, _ = o.sink.Write(data)
	}
	return len(data), nil
}

func (o *runOutput) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.String()
}
