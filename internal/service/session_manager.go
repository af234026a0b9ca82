package service

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	logger   *zap.Logger
}

func NewSessionManager(logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Create registers a new session at the starting position.
func (sm *SessionManager) Create() *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	id := uuid.New().String()
	s := newSession(id)
	sm.sessions[id] = s
	sm.logger.Info("session created", zap.String("session", id))
	return s
}

func (sm *SessionManager) Get(id string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	s, exists := sm.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (sm *SessionManager) Exists(id string) bool {
	_, err := sm.Get(id)
	return err == nil
}

// Delete removes the session and closes its connections.
func (sm *SessionManager) Delete(id string) error {
	sm.mu.Lock()
	s, exists := sm.sessions[id]
	delete(sm.sessions, id)
	sm.mu.Unlock()

	if !exists {
		return ErrSessionNotFound
	}
	s.connections.mu.Lock()
	for connID, conn := range s.connections.connections {
		conn.Close()
		delete(s.connections.connections, connID)
	}
	s.connections.mu.Unlock()
	sm.logger.Info("session deleted", zap.String("session", id))
	return nil
}

func (sm *SessionManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}
