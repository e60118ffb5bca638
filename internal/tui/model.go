// Package tui is the terminal front end: a bubbletea program over one
// playground.Workspace.
package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/caffeineduck/pyplay/gallery"
	"github.com/caffeineduck/pyplay/layout"
	"github.com/caffeineduck/pyplay/playground"
	"github.com/caffeineduck/pyplay/store"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	refreshInterval = 250 * time.Millisecond
	// cellWidthPx approximates a terminal cell in pixels for the narrow
	// viewport rule.
	cellWidthPx = 8
	splitStep   = 5.0
	eventBatch  = 256
)

type eventsMsg struct {
	events []playground.Event
	ok     bool
}

type tickMsg struct {
	at time.Time
}

type actionKind int

const (
	actionSave actionKind = iota
	actionLoad
	actionDownload
)

type actionDoneMsg struct {
	kind actionKind
	err  error
}

// Options configures the terminal front end.
type Options struct {
	// DownloadDir receives code.py on ctrl+d. Defaults to the working
	// directory.
	DownloadDir string
}

// Model is the bubbletea model.
type Model struct {
	ws          *playground.Workspace
	events      <-chan playground.Event
	unsubscribe func()

	editor  textarea.Model
	output  viewport.Model
	input   textinput.Model
	spinner spinner.Model

	state      playground.State
	examples   []gallery.Example
	menuCursor int
	errorText  string
	download   string

	width  int
	height int
	ready  bool

	editorW, editorH int
	outputW, outputH int
}

// New builds a model over ws and subscribes to its events.
func New(ws *playground.Workspace, opts Options) Model {
	editor := textarea.New()
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.Prompt = ""
	editor.ShowLineNumbers = true
	editor.SetWidth(60)
	editor.SetHeight(20)
	editor.SetValue(ws.Content())
	editor.Focus()

	output := viewport.New(60, 20)

	input := textinput.New()
	input.CharLimit = 4096
	input.Width = 40

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = lipgloss.NewStyle().Foreground(accentSecondary)

	dir := opts.DownloadDir
	if dir == "" {
		dir = "."
	}

	events, unsubscribe := ws.Subscribe()
	m := Model{
		ws:          ws,
		events:      events,
		unsubscribe: unsubscribe,
		editor:      editor,
		output:      output,
		input:       input,
		spinner:     spin,
		examples:    gallery.All(),
		download:    dir,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForEventsCmd(m.events),
		tickCmd(),
		m.spinner.Tick,
		textarea.Blink,
	)
}

// waitForEventsCmd blocks for one event, then drains whatever else is
// queued so a burst of output costs one redraw.
func waitForEventsCmd(ch <-chan playground.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return eventsMsg{ok: false}
		}
		events := make([]playground.Event, 0, 16)
		events = append(events, event)
		for len(events) < eventBatch {
			select {
			case next, ok := <-ch:
				if !ok {
					return eventsMsg{events: events, ok: true}
				}
				events = append(events, next)
			default:
				return eventsMsg{events: events, ok: true}
			}
		}
		return eventsMsg{events: events, ok: true}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(at time.Time) tea.Msg {
		return tickMsg{at: at}
	})
}

func saveCmd(ws *playground.Workspace) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return actionDoneMsg{kind: actionSave, err: ws.Save(ctx)}
	}
}

func loadCmd(ws *playground.Workspace) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return actionDoneMsg{kind: actionLoad, err: ws.Load(ctx)}
	}
}

func downloadCmd(ws *playground.Workspace, dir string) tea.Cmd {
	return func() tea.Msg {
		f := ws.Download()
		err := os.WriteFile(filepath.Join(dir, f.Name), f.Data, 0o644)
		return actionDoneMsg{kind: actionDownload, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.ws.SetViewport(msg.Width * cellWidthPx)
		m.refresh()
		return m, nil

	case eventsMsg:
		if !msg.ok {
			return m, tea.Quit
		}
		m.refresh()
		return m, waitForEventsCmd(m.events)

	case tickMsg:
		m.refresh()
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case actionDoneMsg:
		m.setError(msg.err)
		if msg.kind == actionLoad && msg.err == nil {
			m.editor.SetValue(m.ws.Content())
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	if m.state.InputVisible {
		m.input, cmd = m.input.Update(msg)
	} else {
		m.editor, cmd = m.editor.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+c":
		m.ws.Stop()
		m.unsubscribe()
		return m, tea.Quit
	case "ctrl+r":
		m.setError(m.ws.Run())
	case "esc":
		if m.state.Layout.MenuOpen {
			m.ws.CloseMenu()
		} else {
			_, err := m.ws.HandleKey(context.Background(), playground.Key{Name: "Escape"})
			m.setError(err)
		}
	case "ctrl+s":
		cmd = saveCmd(m.ws)
	case "ctrl+o":
		cmd = loadCmd(m.ws)
	case "ctrl+d":
		cmd = downloadCmd(m.ws, m.download)
	case "ctrl+e":
		if m.ws.ToggleMenu() {
			m.menuCursor = 0
		}
	case "ctrl+l":
		m.ws.ClearOutput()
	case "ctrl+g":
		if m.state.Layout.View == layout.ViewGraphics {
			m.ws.SetView(layout.ViewConsole)
		} else {
			m.ws.SetView(layout.ViewGraphics)
		}
	case "ctrl+f":
		cmd = m.toggleFullscreen()
	case "ctrl+left":
		m.ws.SetSplit(m.state.Layout.EditorShare - splitStep)
	case "ctrl+right":
		m.ws.SetSplit(m.state.Layout.EditorShare + splitStep)
	case "ctrl+up":
		m.ws.IncreaseFont()
	case "ctrl+down":
		m.ws.DecreaseFont()
	default:
		switch {
		case m.state.Layout.MenuOpen:
			m.handleMenuKey(msg)
		case m.state.InputVisible:
			cmd = m.handleInputKey(msg)
		default:
			cmd = m.handleEditorKey(msg)
		}
	}

	m.refresh()
	return m, cmd
}

func (m *Model) handleMenuKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case "down", "j":
		if m.menuCursor < len(m.examples)-1 {
			m.menuCursor++
		}
	case "enter":
		ex := m.examples[m.menuCursor]
		if err := m.ws.LoadExample(ex.Name); err != nil {
			m.setError(err)
			return
		}
		m.editor.SetValue(m.ws.Content())
		m.syncEditor()
	}
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyEnter {
		value := m.input.Value()
		m.input.Reset()
		m.setError(m.ws.SubmitInput(value))
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleEditorKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	if msg.Type == tea.KeyTab {
		m.editor.InsertString(playground.IndentUnit)
	} else {
		m.editor, cmd = m.editor.Update(msg)
	}
	m.syncEditor()
	return cmd
}

// syncEditor pushes the textarea buffer and cursor into the workspace.
func (m *Model) syncEditor() {
	if v := m.editor.Value(); v != m.ws.Content() {
		m.ws.SetContent(v)
	}
	info := m.editor.LineInfo()
	m.ws.SetCursor(playground.Cursor{Line: m.editor.Line(), Col: info.StartColumn + info.ColumnOffset})
}

func (m *Model) toggleFullscreen() tea.Cmd {
	switch m.ws.ToggleFullscreen(m.state.Layout.Fullscreen) {
	case layout.EnterFullscreen:
		m.ws.SyncFullscreen(true)
		return tea.EnterAltScreen
	default:
		m.ws.SyncFullscreen(false)
		return tea.ExitAltScreen
	}
}

// setError shows err on the status line. Errors the workspace already
// reported through a notice are not repeated.
func (m *Model) setError(err error) {
	switch {
	case err == nil,
		errors.Is(err, playground.ErrEmptySource),
		errors.Is(err, store.ErrNotFound):
		m.errorText = ""
	default:
		m.errorText = err.Error()
	}
}

// refresh pulls the workspace state and re-lays out the panes.
func (m *Model) refresh() {
	m.state = m.ws.Snapshot()

	if m.state.InputVisible && !m.input.Focused() {
		m.editor.Blur()
		m.input.Prompt = m.state.InputPrompt
		m.input.Focus()
	}
	if !m.state.InputVisible && m.input.Focused() {
		m.input.Blur()
		m.input.Reset()
		m.editor.Focus()
	}

	m.resizePanels()
	if m.state.Layout.View == layout.ViewGraphics {
		m.output.SetContent(m.ws.Canvas().RenderASCII(maxInt(10, m.outputW), maxInt(5, m.outputH)))
		return
	}
	m.output.SetContent(renderSpans(m.state.Output, m.outputW))
	m.output.GotoBottom()
}
