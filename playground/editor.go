package playground

import "strings"

// IndentUnit is what the Tab key inserts.
const IndentUnit = "    "

// Cursor is a zero-based position in the editor buffer. Col counts runes.
type Cursor struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Selection is a range between two cursors. An empty selection has
// Start == End.
type Selection struct {
	Start Cursor `json:"start"`
	End   Cursor `json:"end"`
}

func (s Selection) empty() bool { return s.Start == s.End }

// ordered returns the selection with Start before End.
func (s Selection) ordered() Selection {
	if s.End.Line < s.Start.Line || (s.End.Line == s.Start.Line && s.End.Col < s.Start.Col) {
		return Selection{Start: s.End, End: s.Start}
	}
	return s
}

// Editor mirrors the content of the host's editing widget and its cursor.
// It does not lock; Workspace serializes access.
type Editor struct {
	lines []string
	sel   Selection
}

// NewEditor returns an editor holding content with the cursor at the start.
func NewEditor(content string) *Editor {
	e := &Editor{}
	e.SetContent(content)
	return e
}

// Content returns the buffer.
func (e *Editor) Content() string {
	return strings.Join(e.lines, "\n")
}

// SetContent replaces the buffer and moves the cursor to the start.
func (e *Editor) SetContent(content string) {
	e.lines = strings.Split(content, "\n")
	e.sel = Selection{}
}

// Cursor returns the selection head.
func (e *Editor) Cursor() Cursor {
	return e.sel.End
}

// Selection returns the current selection.
func (e *Editor) Selection() Selection {
	return e.sel
}

// SetCursor moves the cursor, clamped into the buffer, and drops any
// selection.
func (e *Editor) SetCursor(c Cursor) Cursor {
	c = e.clamp(c)
	e.sel = Selection{Start: c, End: c}
	return c
}

// Select sets the selection, clamped into the buffer.
func (e *Editor) Select(s Selection) {
	e.sel = Selection{Start: e.clamp(s.Start), End: e.clamp(s.End)}
}

func (e *Editor) clamp(c Cursor) Cursor {
	if c.Line < 0 {
		c.Line = 0
	}
	if c.Line >= len(e.lines) {
		c.Line = len(e.lines) - 1
	}
	n := len([]rune(e.lines[c.Line]))
	if c.Col < 0 {
		c.Col = 0
	}
	if c.Col > n {
		c.Col = n
	}
	return c
}

// Insert replaces the selection with text and leaves the cursor after it.
func (e *Editor) Insert(text string) {
	sel := e.sel.ordered()
	before := []rune(e.lines[sel.Start.Line])[:sel.Start.Col]
	after := []rune(e.lines[sel.End.Line])[sel.End.Col:]

	inserted := strings.Split(text, "\n")
	last := len(inserted) - 1
	cursor := Cursor{
		Line: sel.Start.Line + last,
		Col:  len([]rune(inserted[last])),
	}
	if last == 0 {
		cursor.Col += len(before)
	}
	inserted[0] = string(before) + inserted[0]
	inserted[last] += string(after)

	lines := make([]string, 0, len(e.lines)-(sel.End.Line-sel.Start.Line)+last)
	lines = append(lines, e.lines[:sel.Start.Line]...)
	lines = append(lines, inserted...)
	lines = append(lines, e.lines[sel.End.Line+1:]...)
	e.lines = lines
	e.sel = Selection{Start: cursor, End: cursor}
}

// InsertTab indents every selected line by IndentUnit when something is
// selected and inserts IndentUnit at the cursor otherwise.
func (e *Editor) InsertTab() {
	if e.sel.empty() {
		e.Insert(IndentUnit)
		return
	}
	sel := e.sel.ordered()
	width := len([]rune(IndentUnit))
	for i := sel.Start.Line; i <= sel.End.Line; i++ {
		e.lines[i] = IndentUnit + e.lines[i]
	}
	sel.Start.Col += width
	sel.End.Col += width
	e.sel = sel
}
