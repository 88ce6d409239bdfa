package widget

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

// Session is one live widget conversation, keyed by an opaque id handed to
// the client at creation.
type Session struct {
	ID           string
	SpaID        string
	Conversation *Conversation
	CreatedAt    time.Time

	lastSeen time.Time
}

// SessionStore holds live sessions in memory. Sessions idle past the timeout
// are reaped by the janitor; conversation state is never persisted.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	idle     time.Duration
	logger   *logging.Logger
}

// NewSessionStore creates a store with the given idle timeout.
func NewSessionStore(idle time.Duration, logger *logging.Logger) *SessionStore {
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		idle:     idle,
		logger:   logger,
	}
}

// Create registers a new session for the conversation.
func (s *SessionStore) Create(spaID string, conv *Conversation) *Session {
	now := time.Now()
	session := &Session{
		ID:           uuid.NewString(),
		SpaID:        spaID,
		Conversation: conv,
		CreatedAt:    now,
		lastSeen:     now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session
}

// Get returns a live session and refreshes its idle clock.
func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	session.lastSeen = time.Now()
	return session, nil
}

// Delete closes and removes a session. Unknown ids are a no-op.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if ok {
		session.Conversation.Close()
	}
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartJanitor reaps idle sessions until ctx is done.
func (s *SessionStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.reap()
			}
		}
	}()
}

func (s *SessionStore) reap() {
	cutoff := time.Now().Add(-s.idle)

	s.mu.Lock()
	var expired []*Session
	for id, session := range s.sessions {
		if session.lastSeen.Before(cutoff) {
			expired = append(expired, session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, session := range expired {
		session.Conversation.Close()
		s.logger.Debug("widget session expired", "session_id", session.ID, "spa_id", session.SpaID)
	}
}
