package mcp

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"bibfilter/internal/bibtex"
	"bibfilter/internal/logging"
)

// Session holds one loaded bibliography so later tool calls can refer to
// it by ID instead of resending the text.
type Session struct {
	ID      string
	Source  string
	Records []bibtex.Record

	lastUsed time.Time
}

// Sessions is a thread-safe set of loaded bibliographies. Sessions idle
// for longer than the TTL are dropped on the next access.
type Sessions struct {
	mu   sync.Mutex
	byID map[string]*Session
	ttl  time.Duration
	now  func() time.Time
}

// NewSessions returns an empty set with the given idle TTL (0 = never expire).
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{byID: make(map[string]*Session), ttl: ttl, now: time.Now}
}

// SetTTL changes the idle TTL.
func (s *Sessions) SetTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ttl = ttl
}

// Add stores records under a fresh ID.
func (s *Sessions) Add(source string, records []bibtex.Record) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	sess := &Session{ID: uuid.NewString(), Source: source, Records: records, lastUsed: s.now()}
	s.byID[sess.ID] = sess
	logging.New("mcp-session").Info("bibliography loaded", "id", sess.ID, "source", source, "entries", len(records))
	return sess
}

// Get returns the session and refreshes its idle timer.
func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	sess, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("unknown bibliography_id %q (call load_bibliography first)", id)
	}
	sess.lastUsed = s.now()
	return sess, nil
}

// Drop removes a session. Dropping an unknown ID is a no-op.
func (s *Sessions) Drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	return len(s.byID)
}

func (s *Sessions) expireLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, sess := range s.byID {
		if sess.lastUsed.Before(cutoff) {
			delete(s.byID, id)
			logging.New("mcp-session").Info("bibliography expired", "id", id)
		}
	}
}
