// Package session keeps per-user conversation state between messages.
package session

import (
	"context"
	"sync"

	"productif-agent/internal/model"
)

// Store loads and saves sessions by user id. A missing session is not an
// error: Load returns found=false.
type Store interface {
	Load(ctx context.Context, userID string) (sess model.Session, found bool, err error)
	Save(ctx context.Context, sess model.Session) error
}

// MemoryStore 进程内会话存储，重启后丢失
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]model.Session)}
}

func (s *MemoryStore) Load(_ context.Context, userID string) (model.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	return sess, ok, nil
}

func (s *MemoryStore) Save(_ context.Context, sess model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = sess
	return nil
}
