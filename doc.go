// Package pyplay is a Python playground for beginners, running RustPython
// compiled to WebAssembly.
//
// # Overview
//
// A [playground.Workspace] is the whole screen as state: editor content, the
// output console, run status, the input field, the turtle canvas and the
// layout controls. Front ends drive it with method calls and render it from
// its event stream:
//
//   - cmd/pyplay run: one program in the terminal, input() from readline
//   - cmd/pyplay tui: full-screen editor built on bubbletea
//   - cmd/pyplay serve: HTTP and WebSocket service for browser front ends
//
// # Basic Usage
//
//	lang, _ := python.Load("python.wasm")
//	exec, _ := executor.New(hostfunc.NewRegistry(), executor.WithPrecompile(lang))
//	defer exec.Close()
//
//	ws, _ := playground.NewWorkspace(ctx,
//	    playground.WithRunner(playground.NewWASMRunner(exec, lang)),
//	    playground.WithStore(store.NewMemory()),
//	)
//	defer ws.Close()
//
//	events, unsubscribe := ws.Subscribe()
//	defer unsubscribe()
//
//	ws.SetContent(`name = input("이름: ")` + "\n" + `print("안녕,", name)`)
//	ws.Run()
//
// Each run starts a fresh interpreter. Stop cancels it and the workspace is
// idle again at once; anything the stopped run does afterwards is dropped.
//
// See the [playground], [executor], [hostfunc], [store], and [locale]
// packages for detailed API documentation.
package pyplay
