package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/caffeineduck/pyplay/hostfunc"
)

// Protocol constants - used by the language prelude to call the host.
// Format: \x00PYPLAY:{json}\x00 on stderr, one JSON line back on stdin.
const (
	protocolPrefix = "\x00PYPLAY:"
	protocolSuffix = "\x00"
)

type callRequest struct {
	Fn   string         `json:"fn"`
	Args map[string]any `json:"args"`
}

type callResponse struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// protocolHandler intercepts stderr to handle host function calls.
// Regular stderr output is kept; protocol messages trigger host calls whose
// responses are written to the guest's stdin.
type protocolHandler struct {
	ctx         context.Context
	registry    *hostfunc.Registry
	stdinWriter io.Writer
	realStderr  bytes.Buffer
	buf         bytes.Buffer
	mu          sync.Mutex
	writeMu     sync.Mutex
}

func newProtocolHandler(ctx context.Context, registry *hostfunc.Registry, stdinWriter io.Writer) *protocolHandler {
	return &protocolHandler{
		ctx:         ctx,
		registry:    registry,
		stdinWriter: stdinWriter,
	}
}

func (p *protocolHandler) Write(data []byte) (int, error) {
	p.mu.Lock()
	p.buf.Write(data)
	calls := p.drain()
	p.mu.Unlock()

	// The guest is blocked in this write until we return, and it only reads
	// its stdin afterwards, so calls run off the guest's thread.
	for _, payload := range calls {
		go func(payload string) {
			p.respond(p.dispatch(payload))
		}(payload)
	}

	return len(data), nil
}

// drain moves plain text to realStderr and returns complete call payloads.
// An incomplete trailing message stays buffered for the next write.
func (p *protocolHandler) drain() []string {
	var calls []string
	for {
		content := p.buf.String()
		startIdx := strings.Index(content, protocolPrefix)
		if startIdx == -1 {
			keep := partialPrefixLen(content)
			p.realStderr.WriteString(content[:len(content)-keep])
			p.buf.Reset()
			p.buf.WriteString(content[len(content)-keep:])
			return calls
		}

		p.realStderr.WriteString(content[:startIdx])

		payload, remaining, ok := extractMessage(content, startIdx, protocolPrefix)
		if !ok {
			p.buf.Reset()
			p.buf.WriteString(content[startIdx:])
			return calls
		}

		p.buf.Reset()
		p.buf.WriteString(remaining)
		calls = append(calls, payload)
	}
}

// extractMessage returns the payload of the message starting at idx and the
// text after it. ok is false when the suffix has not arrived yet.
func extractMessage(content string, idx int, prefix string) (payload, remaining string, ok bool) {
	body := content[idx+len(prefix):]
	end := strings.Index(body, protocolSuffix)
	if end == -1 {
		return "", content[idx:], false
	}
	return body[:end], body[end+len(protocolSuffix):], true
}

// partialPrefixLen reports how many trailing bytes of s could be the start
// of a protocol prefix split across writes.
func partialPrefixLen(s string) int {
	limit := len(protocolPrefix) - 1
	if limit > len(s) {
		limit = len(s)
	}
	for n := limit; n > 0; n-- {
		if strings.HasPrefix(protocolPrefix, s[len(s)-n:]) {
			return n
		}
	}
	return 0
}

func (p *protocolHandler) dispatch(payload string) callResponse {
	var req callRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return callResponse{Error: "invalid call format"}
	}
	return p.handleCall(req)
}

func (p *protocolHandler) handleCall(req callRequest) callResponse {
	fn, ok := p.registry.Get(req.Fn)
	if !ok {
		return callResponse{Error: "unknown function: " + req.Fn}
	}

	result, err := fn(p.ctx, req.Args)
	if err != nil {
		return callResponse{Error: err.Error()}
	}
	return callResponse{Data: result}
}

func (p *protocolHandler) respond(resp callResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		data = []byte(`{"error":"internal: failed to marshal response"}`)
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	p.stdinWriter.Write(append(data, '\n'))
}

func (p *protocolHandler) Stderr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.realStderr.String() + p.buf.String()
}
