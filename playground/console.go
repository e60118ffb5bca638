package playground

import "strings"

// SpanKind styles an output span.
type SpanKind string

const (
	SpanNormal SpanKind = "normal"
	SpanInfo   SpanKind = "info"
	SpanError  SpanKind = "error"
	// SpanInput marks text the learner typed into the input field.
	SpanInput SpanKind = "input"
)

// Span is one write to the output pane.
type Span struct {
	Kind SpanKind `json:"kind"`
	Text string   `json:"text"`
}

// Console is the output pane: an append-only list of spans plus the inline
// input field. It does not lock; Workspace serializes access.
type Console struct {
	spans        []Span
	inputVisible bool
}

func (c *Console) Append(kind SpanKind, text string) Span {
	s := Span{Kind: kind, Text: text}
	c.spans = append(c.spans, s)
	return s
}

// Clear empties the pane and hides the input field.
func (c *Console) Clear() {
	c.spans = nil
	c.HideInput()
}

func (c *Console) ShowInput() { c.inputVisible = true }

func (c *Console) HideInput() { c.inputVisible = false }

func (c *Console) InputVisible() bool { return c.inputVisible }

// Spans returns a copy of the pane's spans.
func (c *Console) Spans() []Span {
	out := make([]Span, len(c.spans))
	copy(out, c.spans)
	return out
}

// Text concatenates every span.
func (c *Console) Text() string {
	var b strings.Builder
	for _, s := range c.spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
