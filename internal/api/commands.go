package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/caffeineduck/pyplay/gallery"
	"github.com/caffeineduck/pyplay/layout"
	"github.com/caffeineduck/pyplay/playground"
	"github.com/caffeineduck/pyplay/store"
)

// ErrUnknownCommand is returned for a command type the service does not
// handle.
var ErrUnknownCommand = errors.New("unknown command")

// ErrBadCommand is returned when a command lacks the fields it needs.
var ErrBadCommand = errors.New("bad command")

// Command is one user action, sent as the body of a session POST or as a
// WebSocket message. Only the fields the type needs are read.
type Command struct {
	// ID is echoed in the WebSocket reply.
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`

	Code  string `json:"code,omitempty"`
	Text  string `json:"text,omitempty"`
	Value string `json:"value,omitempty"`
	Name  string `json:"name,omitempty"`
	View  string `json:"view,omitempty"`

	// font: Size sets, Step grows (+) or shrinks (-).
	Size int `json:"size,omitempty"`
	Step int `json:"step,omitempty"`

	// split: Pos and Extent drag the divider; Share sets it directly.
	Pos    float64  `json:"pos,omitempty"`
	Extent float64  `json:"extent,omitempty"`
	Share  *float64 `json:"share,omitempty"`

	Width  int                `json:"width,omitempty"`
	Native bool               `json:"native,omitempty"`
	Key    *playground.Key    `json:"key,omitempty"`
	Cursor *playground.Cursor `json:"cursor,omitempty"`
}

// Command types.
const (
	CmdCode           = "code"
	CmdInsert         = "insert"
	CmdTab            = "tab"
	CmdCursor         = "cursor"
	CmdRun            = "run"
	CmdStop           = "stop"
	CmdInput          = "input"
	CmdSave           = "save"
	CmdLoad           = "load"
	CmdClear          = "clear"
	CmdExample        = "example"
	CmdFont           = "font"
	CmdSplit          = "split"
	CmdViewport       = "viewport"
	CmdFullscreen     = "fullscreen"
	CmdFullscreenSync = "fullscreen-sync"
	CmdView           = "view"
	CmdMenu           = "menu"
	CmdMenuClose      = "menu-close"
	CmdKey            = "key"
)

// dispatch applies cmd to ws and returns a small result for the reply.
func dispatch(ctx context.Context, ws *playground.Workspace, cmd Command) (any, error) {
	switch cmd.Type {
	case CmdCode:
		ws.SetContent(cmd.Code)
		return nil, nil
	case CmdInsert:
		ws.Insert(cmd.Text)
		return nil, nil
	case CmdTab:
		ws.InsertTab()
		return nil, nil
	case CmdCursor:
		if cmd.Cursor == nil {
			return nil, fmt.Errorf("%w: cursor required", ErrBadCommand)
		}
		return ws.SetCursor(*cmd.Cursor), nil
	case CmdRun:
		return nil, ws.Run()
	case CmdStop:
		return map[string]bool{"stopped": ws.Stop()}, nil
	case CmdInput:
		return nil, ws.SubmitInput(cmd.Value)
	case CmdSave:
		return nil, ws.Save(ctx)
	case CmdLoad:
		return nil, ws.Load(ctx)
	case CmdClear:
		ws.ClearOutput()
		return nil, nil
	case CmdExample:
		return nil, ws.LoadExample(cmd.Name)
	case CmdFont:
		var size int
		switch {
		case cmd.Size > 0:
			size = ws.SetFontSize(cmd.Size)
		case cmd.Step > 0:
			size = ws.IncreaseFont()
		case cmd.Step < 0:
			size = ws.DecreaseFont()
		default:
			return nil, fmt.Errorf("%w: size or step required", ErrBadCommand)
		}
		return map[string]int{"fontSize": size}, nil
	case CmdSplit:
		var share float64
		switch {
		case cmd.Extent > 0:
			share = ws.DragSplit(cmd.Pos, cmd.Extent)
		case cmd.Share != nil:
			share = ws.SetSplit(*cmd.Share)
		default:
			return nil, fmt.Errorf("%w: extent or share required", ErrBadCommand)
		}
		return map[string]float64{"editorShare": share}, nil
	case CmdViewport:
		return map[string]layout.Orientation{"orientation": ws.SetViewport(cmd.Width)}, nil
	case CmdFullscreen:
		return map[string]layout.FullscreenRequest{"fullscreen": ws.ToggleFullscreen(cmd.Native)}, nil
	case CmdFullscreenSync:
		ws.SyncFullscreen(cmd.Native)
		return nil, nil
	case CmdView:
		v, err := layout.ParseView(cmd.View)
		if err != nil {
			return nil, err
		}
		ws.SetView(v)
		return nil, nil
	case CmdMenu:
		return map[string]bool{"menuOpen": ws.ToggleMenu()}, nil
	case CmdMenuClose:
		ws.CloseMenu()
		return nil, nil
	case CmdKey:
		if cmd.Key == nil {
			return nil, fmt.Errorf("%w: key required", ErrBadCommand)
		}
		action, err := ws.HandleKey(ctx, *cmd.Key)
		return map[string]playground.KeyAction{"action": action}, err
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
}

// statusFor maps a command error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, gallery.ErrNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, playground.ErrRunning),
		errors.Is(err, playground.ErrNoPendingInput):
		return http.StatusConflict
	case errors.Is(err, playground.ErrEmptySource):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnknownCommand),
		errors.Is(err, ErrBadCommand),
		errors.Is(err, layout.ErrUnknownView),
		errors.Is(err, ErrInvalidSessionID):
		return http.StatusBadRequest
	case errors.Is(err, playground.ErrNoRunner):
		return http.StatusServiceUnavailable
	case errors.Is(err, playground.ErrClosed):
		return http.StatusGone
	}
	return http.StatusInternalServerError
}
