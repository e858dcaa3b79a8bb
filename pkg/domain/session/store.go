package session

import (
	"sync"
	"time"
)

// Store maps conversation identifiers to sessions.
type Store interface {
	Get(id string) (*Session, bool)
	GetOrCreate(id string) *Session
	// Reset returns an existing session to Idle. Unknown ids are ignored.
	Reset(id string)
	// Delete forgets the session entirely.
	Delete(id string)
}

// ---------- In-memory store (потокобезопасно) ----------

type MemoryStore struct {
	mu  sync.RWMutex
	m   map[string]*Session
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]*Session), now: time.Now}
}

func (s *MemoryStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.m[id]
	return sess, ok
}

func (s *MemoryStore) GetOrCreate(id string) *Session {
	if sess, ok := s.Get(id); ok {
		return sess
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.m[id]; ok {
		return sess
	}
	sess := New(id, s.now())
	s.m[id] = sess
	return sess
}

func (s *MemoryStore) Reset(id string) {
	sess, ok := s.Get(id)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	sess.Reset()
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Sweep deletes sessions idle since before cutoff and returns how many went.
func (s *MemoryStore) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.m {
		if sess.LastActive().Before(cutoff) {
			delete(s.m, id)
			n++
		}
	}
	return n
}
