package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/klabast/wb-services/beschikbaarheid/internal/notify"
	"github.com/klabast/wb-services/beschikbaarheid/internal/view"
)

// Session is one browser's widget. Events on a session are serialized so the
// synchronizer sees them one at a time.
type Session struct {
	ID string

	mu       sync.Mutex
	widget   *view.Synchronizer
	notifier *notify.Notifier
	lastSeen time.Time
}

// Do runs f with exclusive access to the session state.
func (s *Session) Do(f func(*view.Synchronizer, *notify.Notifier)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f(s.widget, s.notifier)
}

// SessionStore keeps sessions in memory until they sit idle for ttl.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	newSync  func() *view.Synchronizer
	logger   *zap.Logger
}

func NewSessionStore(ttl time.Duration, newSync func() *view.Synchronizer, logger *zap.Logger) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		newSync:  newSync,
		logger:   logger,
	}
}

// Get returns a live session and marks it as used.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(sess.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	sess.lastSeen = now
	return sess, true
}

// Create starts a session with an empty selection.
func (s *SessionStore) Create() *Session {
	sess := &Session{
		ID:       uuid.NewString(),
		widget:   s.newSync(),
		notifier: notify.New(notify.WithClock(s.now)),
	}

	s.mu.Lock()
	sess.lastSeen = s.now()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Debug("session created", zap.String("session", sess.ID))
	return sess
}

// Len is the number of sessions, expired ones included until the next sweep.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops idle sessions and returns how many went.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("expired sessions removed", zap.Int("count", n), zap.Int("remaining", s.Len()))
			}
		}
	}
}
