// Package executor runs guest programs inside a WebAssembly interpreter.
//
// # Overview
//
// The executor manages WASM module compilation, caching, and execution. Each
// Run instantiates a fresh module, so no state survives between runs.
//
// # Basic Usage
//
//	exec, err := executor.New(hostfunc.NewRegistry())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer exec.Close()
//
//	result := exec.Run(ctx, lang, `print("hello")`)
//	fmt.Println(result.Output)
//
// # Streaming and callbacks
//
// Output can be streamed while the program runs, and run-scoped host
// functions give the guest its callback surface:
//
//	result := exec.Run(ctx, lang, code,
//	    executor.WithTimeout(60*time.Second),
//	    executor.WithStdout(console),
//	    executor.WithHostFunc(hostfunc.FnInputRequest, hostfunc.NewInput(ask)),
//	)
//
// # Cancellation
//
// Cancelling ctx (or hitting the WithTimeout ceiling) aborts the module at
// its next check point; a guest blocked on a host call is released through
// its stdin. Timeouts surface as [ErrTimeLimit], cancellation as
// [ErrCancelled].
//
// # Language Interface
//
// To add support for a new language, implement the [Language] interface.
// See [github.com/caffeineduck/pyplay/language/python] for an example.
package executor
