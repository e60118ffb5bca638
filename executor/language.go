package executor

// Language is an interpreter compiled to WASI.
type Language interface {
	// Name keys the compiled-module cache.
	Name() string

	// Module is the interpreter binary.
	Module() []byte

	// WrapCode puts the guest prelude in front of the learner's program. The
	// prelude routes input(), imports and turtle drawing through host calls.
	WrapCode(code string) string

	// Args is the interpreter argv for a wrapped program.
	Args(wrappedCode string) []string
}
