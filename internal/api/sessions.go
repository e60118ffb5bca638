package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/caffeineduck/pyplay/internal/logger"
	"github.com/caffeineduck/pyplay/playground"
	"github.com/google/uuid"
)

// ErrInvalidSessionID is returned when a client asks to resume a session
// under an id that is not a UUID.
var ErrInvalidSessionID = errors.New("invalid session id")

const reapInterval = time.Minute

// workspaceFactory builds the workspace for a new session. id doubles as the
// storage namespace, so a client that resumes under the same id gets its
// saved code back.
type workspaceFactory func(ctx context.Context, id, lang string) (*playground.Workspace, error)

type session struct {
	id string
	ws *playground.Workspace

	mu       sync.Mutex
	lastUsed time.Time
	attached int
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

// attach marks a live connection. Attached sessions never expire.
func (s *session) attach() {
	s.mu.Lock()
	s.attached++
	s.mu.Unlock()
}

func (s *session) detach(now time.Time) {
	s.mu.Lock()
	s.attached--
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *session) idle(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attached > 0 || s.ws.Running() {
		return false
	}
	return now.Sub(s.lastUsed) > ttl
}

type sessionManager struct {
	sessions map[string]*session
	mu       sync.RWMutex
	ttl      time.Duration
	open     workspaceFactory
	now      func() time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func newSessionManager(ttl time.Duration, open workspaceFactory, now func() time.Time) *sessionManager {
	if now == nil {
		now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	sm := &sessionManager{
		sessions: make(map[string]*session),
		ttl:      ttl,
		open:     open,
		now:      now,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go sm.cleanup()
	return sm
}

// create opens a session. A non-empty id resumes that id: the live session
// if there is one, otherwise a fresh workspace over the same storage. The
// second result reports whether an existing session was returned.
func (sm *sessionManager) create(id, lang string) (*session, bool, error) {
	if id == "" {
		id = uuid.NewString()
	} else {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrInvalidSessionID, err)
		}
		id = parsed.String()
	}

	if sess, ok := sm.get(id); ok {
		return sess, true, nil
	}

	ws, err := sm.open(sm.ctx, id, lang)
	if err != nil {
		return nil, false, err
	}
	sess := &session{id: id, ws: ws, lastUsed: sm.now()}

	sm.mu.Lock()
	if existing, ok := sm.sessions[id]; ok {
		sm.mu.Unlock()
		ws.Close()
		existing.touch(sm.now())
		return existing, true, nil
	}
	sm.sessions[id] = sess
	sm.mu.Unlock()

	logger.Infof("session %s created (%s)", id, ws.Localizer().Language())
	return sess, false, nil
}

func (sm *sessionManager) get(id string) (*session, bool) {
	sm.mu.RLock()
	sess, ok := sm.sessions[id]
	sm.mu.RUnlock()
	if !ok {
		return nil, false
	}
	sess.touch(sm.now())
	return sess, true
}

func (sm *sessionManager) close(id string) bool {
	sm.mu.Lock()
	sess, ok := sm.sessions[id]
	if ok {
		delete(sm.sessions, id)
	}
	sm.mu.Unlock()

	if ok {
		sess.ws.Close()
		logger.Infof("session %s closed", id)
	}
	return ok
}

// reap closes every session idle for longer than the TTL and returns how
// many it closed.
func (sm *sessionManager) reap() int {
	now := sm.now()
	var expired []*session

	sm.mu.Lock()
	for id, sess := range sm.sessions {
		if sess.idle(now, sm.ttl) {
			expired = append(expired, sess)
			delete(sm.sessions, id)
		}
	}
	sm.mu.Unlock()

	for _, sess := range expired {
		sess.ws.Close()
		logger.Infof("session %s expired", sess.id)
	}
	return len(expired)
}

func (sm *sessionManager) cleanup() {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-sm.done:
			return
		case <-ticker.C:
			sm.reap()
		}
	}
}

func (sm *sessionManager) count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

func (sm *sessionManager) closeAll() {
	sm.closeOnce.Do(func() { close(sm.done) })

	sm.mu.Lock()
	all := sm.sessions
	sm.sessions = make(map[string]*session)
	sm.mu.Unlock()

	for _, sess := range all {
		sess.ws.Close()
	}
	sm.cancel()
}
