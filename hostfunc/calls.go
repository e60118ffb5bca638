package hostfunc

import (
	"context"
	"time"
)

// NewInput adapts an input source to the input_request host call. The call
// blocks until request returns; the guest stays suspended on its stdin read
// for the whole time. Args: prompt (optional).
func NewInput(request func(ctx context.Context, prompt string) (string, error)) Func {
	return func(ctx context.Context, args map[string]any) (any, error) {
		prompt, _ := stringArg(args, "prompt")
		return request(ctx, prompt)
	}
}

// NewTurtle adapts a drawing sink to the turtle host call.
func NewTurtle(draw func(ctx context.Context, req TurtleRequest) error) Func {
	return func(ctx context.Context, args map[string]any) (any, error) {
		op, _ := stringArg(args, "op")
		color, _ := stringArg(args, "color")
		req := TurtleRequest{
			Op:    op,
			X1:    floatArg(args, "x1"),
			Y1:    floatArg(args, "y1"),
			X2:    floatArg(args, "x2"),
			Y2:    floatArg(args, "y2"),
			Color: color,
			Width: floatArg(args, "width"),
		}
		if err := draw(ctx, req); err != nil {
			return nil, err
		}
		return "ok", nil
	}
}

// TimeNow returns the host wall clock in seconds.
func TimeNow(ctx context.Context, args map[string]any) (any, error) {
	return float64(time.Now().UnixNano()) / 1e9, nil
}
