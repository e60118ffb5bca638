package hostfunc

// Host function names understood by the Python prelude.
const (
	FnInputRequest = "input_request"
	FnModuleRead   = "module_read"
	FnTurtle       = "turtle"
	FnTimeNow      = "time_now"
)

// InputRequest is sent by the guest's input() replacement.
type InputRequest struct {
	Prompt string `json:"prompt"`
}

// ModuleReadRequest asks for the source of a module the guest could not
// resolve from its own standard library.
type ModuleReadRequest struct {
	Name string `json:"name"`
}

// TurtleRequest carries one drawing command from the turtle shim.
type TurtleRequest struct {
	Op    string  `json:"op"`
	X1    float64 `json:"x1,omitempty"`
	Y1    float64 `json:"y1,omitempty"`
	X2    float64 `json:"x2,omitempty"`
	Y2    float64 `json:"y2,omitempty"`
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok
}

func floatArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
