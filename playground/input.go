package playground

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrInputPending is returned when a second input request arrives while
	// one is outstanding.
	ErrInputPending = errors.New("input request already pending")
	// ErrNoPendingInput is returned by Submit when nothing is waiting.
	ErrNoPendingInput = errors.New("no pending input request")
	// ErrInputCancelled is returned to a waiting request cancelled by Cancel.
	ErrInputCancelled = errors.New("input request cancelled")
)

type pendingInput struct {
	prompt    string
	reply     chan string
	cancelled chan struct{}
}

// InputBridge suspends the interpreter's input() until the learner submits a
// line. At most one request is outstanding.
type InputBridge struct {
	mu      sync.Mutex
	pending *pendingInput

	// onRequest runs when a request becomes pending, before Request blocks.
	// An error withdraws the request and is returned by Request.
	onRequest func(owner uint64, prompt string) error
	// onSubmit runs before the waiting request is released, so the echo lands
	// ahead of any output the program writes after resuming.
	onSubmit func(value string)
}

// NewInputBridge returns a bridge. Either hook may be nil.
func NewInputBridge(onRequest func(owner uint64, prompt string) error, onSubmit func(value string)) *InputBridge {
	return &InputBridge{onRequest: onRequest, onSubmit: onSubmit}
}

// Request blocks until Submit, Cancel or ctx is done. owner identifies the
// caller to the onRequest hook.
func (b *InputBridge) Request(ctx context.Context, owner uint64, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := &pendingInput{
		prompt:    prompt,
		reply:     make(chan string, 1),
		cancelled: make(chan struct{}),
	}

	b.mu.Lock()
	if b.pending != nil {
		b.mu.Unlock()
		return "", ErrInputPending
	}
	b.pending = p
	b.mu.Unlock()

	if b.onRequest != nil {
		if err := b.onRequest(owner, prompt); err != nil {
			b.release(p)
			return "", err
		}
	}

	select {
	case v := <-p.reply:
		return v, nil
	case <-p.cancelled:
		return "", ErrInputCancelled
	case <-ctx.Done():
		b.release(p)
		return "", ctx.Err()
	}
}

// Submit resolves the pending request with value.
func (b *InputBridge) Submit(value string) error {
	b.mu.Lock()
	p := b.pending
	b.pending = nil
	b.mu.Unlock()

	if p == nil {
		return ErrNoPendingInput
	}
	if b.onSubmit != nil {
		b.onSubmit(value)
	}
	p.reply <- value
	return nil
}

// Cancel releases a pending request with ErrInputCancelled. It reports
// whether anything was pending.
func (b *InputBridge) Cancel() bool {
	b.mu.Lock()
	p := b.pending
	b.pending = nil
	b.mu.Unlock()

	if p == nil {
		return false
	}
	close(p.cancelled)
	return true
}

// Pending returns the outstanding prompt.
func (b *InputBridge) Pending() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending == nil {
		return "", false
	}
	return b.pending.prompt, true
}

func (b *InputBridge) release(p *pendingInput) {
	b.mu.Lock()
	if b.pending == p {
		b.pending = nil
	}
	b.mu.Unlock()
}
