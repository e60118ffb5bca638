package executor

import (
	"errors"
	"os"
	"sync"

	"github.com/caffeineduck/pyplay/hostfunc"
)

// PythonWASMEnv names the environment variable integration tests read to find
// the interpreter binary.
const PythonWASMEnv = "PYPLAY_PYTHON_WASM"

// ErrNoTestWASM is returned by TestWASM when no binary is configured.
var ErrNoTestWASM = errors.New(PythonWASMEnv + " not set")

var (
	testExecutor     *Executor
	testExecutorOnce sync.Once
	testExecutorErr  error
)

// GetTestExecutor returns a shared executor for testing, avoiding the
// compile cost on every test. The executor is created once and reused.
func GetTestExecutor() (*Executor, error) {
	testExecutorOnce.Do(func() {
		testExecutor, testExecutorErr = New(hostfunc.NewRegistry())
	})
	return testExecutor, testExecutorErr
}

// CloseTestExecutor closes the shared test executor.
func CloseTestExecutor() {
	if testExecutor != nil {
		testExecutor.Close()
		testExecutor = nil
		testExecutorOnce = sync.Once{}
	}
}

// TestWASM reads the interpreter binary named by PYPLAY_PYTHON_WASM.
func TestWASM() ([]byte, error) {
	path := os.Getenv(PythonWASMEnv)
	if path == "" {
		return nil, ErrNoTestWASM
	}
	return os.ReadFile(path)
}
