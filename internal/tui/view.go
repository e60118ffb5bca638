package tui

import (
	"fmt"
	"strings"

	"github.com/caffeineduck/pyplay/layout"
	"github.com/caffeineduck/pyplay/locale"
	"github.com/caffeineduck/pyplay/playground"

	"github.com/charmbracelet/lipgloss"
)

var (
	panelBorder     = lipgloss.Color("#2D6A80")
	accentPrimary   = lipgloss.Color("#50E3C2")
	accentSecondary = lipgloss.Color("#F6AE2D")
	mutedText       = lipgloss.Color("#8CA1AE")
	warningText     = lipgloss.Color("#FF6B6B")
)

var (
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(accentPrimary)

	statusStyle = lipgloss.NewStyle().
			Foreground(accentSecondary).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(warningText).
			Bold(true)

	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#05090C")).
			Background(accentPrimary).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(accentPrimary).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(panelBorder).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedText)

	menuSelectedStyle = lipgloss.NewStyle().
				Foreground(accentPrimary).
				Bold(true)
)

var spanStyles = map[playground.SpanKind]lipgloss.Style{
	playground.SpanInfo:  lipgloss.NewStyle().Foreground(mutedText),
	playground.SpanError: lipgloss.NewStyle().Foreground(warningText),
	playground.SpanInput: lipgloss.NewStyle().Foreground(accentSecondary),
}

const helpText = "ctrl+r run | esc stop | ctrl+s save | ctrl+o load | ctrl+d download | ctrl+e examples | ctrl+l clear | ctrl+g console/graphics | ctrl+←/→ split | ctrl+↑/↓ font | ctrl+f fullscreen | ctrl+c quit"

// panel chrome: border plus padding on each axis, and the title line.
const (
	panelFrameW = 4
	panelFrameH = 3
)

func (m Model) View() string {
	if !m.ready {
		return "Starting pyplay..."
	}

	header := headerStyle.Render("pyplay") + helpStyle.Render(fmt.Sprintf("  %s · %dpt · %s", m.state.Language, m.state.Layout.FontSize, m.state.CursorText))

	statusPrefix := "●"
	if m.state.Running {
		statusPrefix = m.spinner.View()
	}
	status := m.state.StatusText
	if m.state.Elapsed != "" && !m.state.Running {
		status += "  " + m.state.Elapsed
	}
	statusLine := statusStyle.Render(statusPrefix + " " + status)
	if m.errorText != "" {
		statusLine += "  " + errorStyle.Render(m.errorText)
	}
	if m.state.Layout.Toast != "" {
		statusLine += "  " + toastStyle.Render(m.state.Layout.Toast)
	}

	editorPanel := renderPanel("main.py", m.editor.View(), m.editorW, m.editorH, !m.state.InputVisible && !m.state.Layout.MenuOpen)

	outputBody := m.output.View()
	if m.state.InputVisible {
		outputBody += "\n" + m.input.View()
	}
	loc := m.ws.Localizer()
	outputTitle := loc.T(locale.TabConsole)
	if m.state.Layout.View == layout.ViewGraphics {
		outputTitle = loc.T(locale.TabGraphics)
	}
	outputPanel := renderPanel(outputTitle, outputBody, m.outputW, m.outputH, m.state.InputVisible)

	var panes string
	if m.state.Layout.Orientation == layout.Vertical {
		panes = lipgloss.JoinVertical(lipgloss.Left, editorPanel, outputPanel)
	} else {
		panes = lipgloss.JoinHorizontal(lipgloss.Top, editorPanel, outputPanel)
	}

	parts := []string{header, statusLine}
	if m.state.Layout.MenuOpen {
		parts = append(parts, renderPanel(loc.T(locale.ExamplesMenu), m.renderMenu(), maxInt(30, m.width/2), len(m.examples)+1, true))
	}
	parts = append(parts, panes, helpStyle.Render(helpText))
	return strings.Join(parts, "\n")
}

func (m Model) renderMenu() string {
	lines := make([]string, 0, len(m.examples)+1)
	for i, ex := range m.examples {
		line := fmt.Sprintf("  %d. %s", i+1, ex.Title)
		if i == m.menuCursor {
			line = menuSelectedStyle.Render("▸ " + line[2:])
		}
		lines = append(lines, line)
	}
	lines = append(lines, helpStyle.Render("up/down select | enter load | esc close"))
	return strings.Join(lines, "\n")
}

func renderPanel(title, body string, width, height int, focused bool) string {
	borderColor := panelBorder
	if focused {
		borderColor = accentSecondary
	}
	style := panelStyle.
		BorderForeground(borderColor).
		Width(width).
		Height(height)

	titleLine := panelTitleStyle.Render(title)
	return style.Render(titleLine + "\n" + body)
}

// resizePanels splits the screen between editor and output by the layout's
// share, stacking them on narrow terminals.
func (m *Model) resizePanels() {
	if m.width <= 0 || m.height <= 0 {
		return
	}

	usableW := maxInt(20, m.width-2)
	usableH := maxInt(8, m.height-4)
	share := m.state.Layout.EditorShare / 100

	if m.state.Layout.Orientation == layout.Vertical {
		m.editorW, m.outputW = usableW, usableW
		m.editorH = maxInt(3, int(float64(usableH)*share)-panelFrameH)
		m.outputH = maxInt(3, usableH-m.editorH-2*panelFrameH)
	} else {
		m.editorW = maxInt(10, int(float64(usableW)*share)-panelFrameW)
		m.outputW = maxInt(10, usableW-m.editorW-2*panelFrameW)
		m.editorH = maxInt(3, usableH-panelFrameH)
		m.outputH = m.editorH
	}

	m.editor.SetWidth(m.editorW)
	m.editor.SetHeight(m.editorH)
	m.output.Width = m.outputW
	m.output.Height = m.outputH
	if m.state.InputVisible {
		m.output.Height = maxInt(1, m.outputH-1)
		m.input.Width = maxInt(10, m.outputW-4)
	}
}

func renderSpans(spans []playground.Span, width int) string {
	var b strings.Builder
	for _, span := range spans {
		style, ok := spanStyles[span.Kind]
		if !ok {
			b.WriteString(span.Text)
			continue
		}
		// Style line by line so wrapping and newlines survive.
		lines := strings.Split(span.Text, "\n")
		for i, line := range lines {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line != "" {
				b.WriteString(style.Render(line))
			}
		}
	}
	if width <= 0 {
		return b.String()
	}
	return lipgloss.NewStyle().Width(width).Render(b.String())
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
