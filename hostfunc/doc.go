// Package hostfunc provides the host functions sandboxed Python code calls
// back into.
//
// Host functions are Go functions reachable from inside the WASM interpreter
// through the stderr/stdin call protocol run by the executor. The playground
// uses them as the interpreter's callback surface:
//
//   - input_request: suspends the program until the user submits a line
//   - module_read: serves module sources the interpreter does not ship
//   - turtle: forwards drawing commands to the graphics view
//   - time_now: host wall clock
//
// # Registry
//
// The [Registry] maps names to [Func] values. Executors clone it per run so
// run-scoped callbacks never leak between runs:
//
//	registry := hostfunc.NewRegistry()
//	registry.Register(hostfunc.FnTimeNow, hostfunc.TimeNow)
//
// # Module table
//
// [ModuleTable] is the builtin file table. Unknown names fail with an error
// wrapping [ErrModuleNotFound]:
//
//	table := hostfunc.NewModuleTable(map[string]string{"turtle": src})
//	registry.Register(hostfunc.FnModuleRead, hostfunc.NewModuleReader(table.Lookup))
package hostfunc
