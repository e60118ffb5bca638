package playground

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInputBridgeSubmit(t *testing.T) {
	var prompts, echoes []string
	b := NewInputBridge(
		func(owner uint64, p string) error { prompts = append(prompts, p); return nil },
		func(v string) { echoes = append(echoes, v) },
	)

	result := make(chan string)
	go func() {
		v, err := b.Request(context.Background(), 1, "name: ")
		if err != nil {
			t.Errorf("Request: %v", err)
		}
		result <- v
	}()

	waitFor(t, "pending", func() bool { _, ok := b.Pending(); return ok })
	if err := b.Submit("Ada"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if v := <-result; v != "Ada" {
		t.Errorf("value = %q", v)
	}
	if len(prompts) != 1 || prompts[0] != "name: " || len(echoes) != 1 || echoes[0] != "Ada" {
		t.Errorf("prompts %q echoes %q", prompts, echoes)
	}
	if err := b.Submit("again"); !errors.Is(err, ErrNoPendingInput) {
		t.Errorf("second Submit err = %v", err)
	}
}

func TestInputBridgeSingleOutstanding(t *testing.T) {
	b := NewInputBridge(nil, nil)
	go b.Request(context.Background(), 1, "first")
	waitFor(t, "pending", func() bool { _, ok := b.Pending(); return ok })

	if _, err := b.Request(context.Background(), 1, "second"); !errors.Is(err, ErrInputPending) {
		t.Errorf("err = %v", err)
	}
	if p, _ := b.Pending(); p != "first" {
		t.Errorf("pending prompt = %q", p)
	}
	b.Cancel()
}

func TestInputBridgeCancel(t *testing.T) {
	b := NewInputBridge(nil, nil)
	errc := make(chan error)
	go func() {
		_, err := b.Request(context.Background(), 1, "")
		errc <- err
	}()
	waitFor(t, "pending", func() bool { _, ok := b.Pending(); return ok })

	if !b.Cancel() {
		t.Fatal("Cancel reported nothing pending")
	}
	if err := <-errc; !errors.Is(err, ErrInputCancelled) {
		t.Errorf("err = %v", err)
	}
	if b.Cancel() {
		t.Error("second Cancel should report nothing pending")
	}
}

func TestInputBridgeContext(t *testing.T) {
	b := NewInputBridge(nil, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := b.Request(ctx, 1, ""); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v", err)
	}
	if _, ok := b.Pending(); ok {
		t.Error("request still pending after context end")
	}

	if _, err := b.Request(ctx, 1, ""); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("request on a done context err = %v", err)
	}
}

func TestInputBridgeRequestRejected(t *testing.T) {
	errRejected := errors.New("rejected")
	var owners []uint64
	b := NewInputBridge(func(owner uint64, p string) error {
		owners = append(owners, owner)
		if owner != 2 {
			return errRejected
		}
		return nil
	}, nil)

	if _, err := b.Request(context.Background(), 1, "old: "); !errors.Is(err, errRejected) {
		t.Fatalf("err = %v", err)
	}
	if _, ok := b.Pending(); ok {
		t.Fatal("rejected request left pending")
	}

	result := make(chan string)
	go func() {
		v, _ := b.Request(context.Background(), 2, "new: ")
		result <- v
	}()
	waitFor(t, "pending", func() bool { _, ok := b.Pending(); return ok })
	if err := b.Submit("ok"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if v := <-result; v != "ok" {
		t.Errorf("value = %q", v)
	}
	if len(owners) != 2 || owners[0] != 1 || owners[1] != 2 {
		t.Errorf("owners = %v", owners)
	}
}
