package playground

import (
	"sync"

	"github.com/caffeineduck/pyplay/graphics"
	"github.com/caffeineduck/pyplay/layout"
)

// EventType names a workspace change.
type EventType string

const (
	EventOutput     EventType = "output"
	EventClear      EventType = "clear"
	EventStatus     EventType = "status"
	EventRunning    EventType = "running"
	EventView       EventType = "view"
	EventInput      EventType = "input"
	EventToast      EventType = "toast"
	EventContent    EventType = "content"
	EventCursor     EventType = "cursor"
	EventLayout     EventType = "layout"
	EventDraw       EventType = "draw"
	EventFullscreen EventType = "fullscreen"
)

// Event is one change published to subscribers. Only the fields relevant to
// Type are set.
type Event struct {
	Seq          uint64                   `json:"seq"`
	Type         EventType                `json:"type"`
	Span         *Span                    `json:"span,omitempty"`
	Status       Status                   `json:"status,omitempty"`
	Text         string                   `json:"text,omitempty"`
	Elapsed      string                   `json:"elapsed,omitempty"`
	Running      bool                     `json:"running,omitempty"`
	View         layout.View              `json:"view,omitempty"`
	InputVisible bool                     `json:"inputVisible,omitempty"`
	Content      string                   `json:"content,omitempty"`
	Cursor       *Cursor                  `json:"cursor,omitempty"`
	Layout       *layout.State            `json:"layout,omitempty"`
	Shape        *graphics.Shape          `json:"shape,omitempty"`
	Fullscreen   layout.FullscreenRequest `json:"fullscreen,omitempty"`
}

// subscriber queues events without bound so a slow reader never blocks the
// workspace, and delivers them in publish order.
type subscriber struct {
	mu    sync.Mutex
	queue []Event
	wake  chan struct{}
	out   chan Event
	done  chan struct{}
	once  sync.Once
}

func newSubscriber() *subscriber {
	s := &subscriber{
		wake: make(chan struct{}, 1),
		out:  make(chan Event),
		done: make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *subscriber) push(e Event) {
	s.mu.Lock()
	s.queue = append(s.queue, e)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		e := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- e:
		case <-s.done:
			return
		}
	}
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.done) })
}
