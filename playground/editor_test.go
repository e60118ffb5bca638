package playground

import "testing"

func TestEditorInsert(t *testing.T) {
	tests := []struct {
		name    string
		content string
		sel     Selection
		text    string
		want    string
		cursor  Cursor
	}{
		{"at start", "print(1)", Selection{}, "x", "xprint(1)", Cursor{0, 1}},
		{"middle", "ab", Selection{Cursor{0, 1}, Cursor{0, 1}}, "Z", "aZb", Cursor{0, 2}},
		{"newline", "ab", Selection{Cursor{0, 1}, Cursor{0, 1}}, "\n", "a\nb", Cursor{1, 0}},
		{"replace selection", "hello world", Selection{Cursor{0, 0}, Cursor{0, 5}}, "bye", "bye world", Cursor{0, 3}},
		{"replace across lines", "one\ntwo\nthree", Selection{Cursor{0, 1}, Cursor{2, 2}}, "-", "o-ree", Cursor{0, 2}},
		{"reversed selection", "abcdef", Selection{Cursor{0, 4}, Cursor{0, 1}}, "", "aef", Cursor{0, 1}},
		{"multi-line insert", "xy", Selection{Cursor{0, 1}, Cursor{0, 1}}, "1\n22", "x1\n22y", Cursor{1, 2}},
		{"korean", "이름", Selection{Cursor{0, 1}, Cursor{0, 1}}, "들", "이들름", Cursor{0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEditor(tt.content)
			e.Select(tt.sel)
			e.Insert(tt.text)
			if got := e.Content(); got != tt.want {
				t.Errorf("content = %q, want %q", got, tt.want)
			}
			if got := e.Cursor(); got != tt.cursor {
				t.Errorf("cursor = %+v, want %+v", got, tt.cursor)
			}
		})
	}
}

func TestEditorInsertTab(t *testing.T) {
	e := NewEditor("if x:\npass")
	e.SetCursor(Cursor{Line: 1, Col: 0})
	e.InsertTab()
	if got := e.Content(); got != "if x:\n    pass" {
		t.Errorf("content = %q", got)
	}

	e = NewEditor("a\nb\nc")
	e.Select(Selection{Start: Cursor{0, 0}, End: Cursor{1, 1}})
	e.InsertTab()
	if got := e.Content(); got != "    a\n    b\nc" {
		t.Errorf("indent selection = %q", got)
	}
	if sel := e.Selection(); sel.End != (Cursor{1, 5}) {
		t.Errorf("selection = %+v", sel)
	}
}

func TestEditorCursorClamp(t *testing.T) {
	e := NewEditor("ab\nc")
	if got := e.SetCursor(Cursor{Line: 9, Col: 9}); got != (Cursor{1, 1}) {
		t.Errorf("clamped = %+v", got)
	}
	if got := e.SetCursor(Cursor{Line: -1, Col: -1}); got != (Cursor{0, 0}) {
		t.Errorf("clamped = %+v", got)
	}
}

func TestEditorSetContentResetsCursor(t *testing.T) {
	e := NewEditor("abc")
	e.SetCursor(Cursor{0, 3})
	e.SetContent("x")
	if e.Cursor() != (Cursor{}) {
		t.Errorf("cursor = %+v", e.Cursor())
	}
}
