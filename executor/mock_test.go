package executor

import (
	"os"
	"path/filepath"
	"testing"
)

// mockLanguage implements Language for testing executor logic
// without the overhead of the real Python runtime.
type mockLanguage struct {
	wasm []byte
}

func (m *mockLanguage) Name() string                     { return "mock" }
func (m *mockLanguage) Module() []byte                   { return m.wasm }
func (m *mockLanguage) WrapCode(code string) string      { return code }
func (m *mockLanguage) Args(wrappedCode string) []string { return []string{"mock", wrappedCode} }

// newMockLanguage loads testdata/mock.wasm, skipping the test when it has
// not been built.
func newMockLanguage(t *testing.T) *mockLanguage {
	t.Helper()
	wasm, err := os.ReadFile(filepath.Join("testdata", "mock.wasm"))
	if err != nil {
		t.Skip("testdata/mock.wasm not built (GOOS=wasip1 GOARCH=wasm go build -o testdata/mock.wasm testdata/mock.go)")
	}
	return &mockLanguage{wasm: wasm}
}
