package sessionstore

import (
	"sync"

	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
	"github.com/rentgengl/copilot-1c-proxy/internal/interfaces"
)

// SessionStore - потокобезопасное in-memory хранилище сессий апстрима,
// по одной на ключ учетных данных.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*entities.Session
}

// NewSessionStore создает новый экземпляр SessionStore
func NewSessionStore() interfaces.SessionRepository {
	return &SessionStore{
		sessions: make(map[string]*entities.Session),
	}
}

// Set сохраняет сессию под ключом учетных данных
func (s *SessionStore) Set(key string, session *entities.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = session
}

// Get извлекает сессию по ключу учетных данных
func (s *SessionStore) Get(key string) (*entities.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, found := s.sessions[key]
	return session, found
}

// Delete убирает сессию из хранилища. Возвращает false, если сессии не было.
func (s *SessionStore) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.sessions[key]; !found {
		return false
	}
	delete(s.sessions, key)
	return true
}

// List возвращает все сессии хранилища
func (s *SessionStore) List() []*entities.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]*entities.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// Len возвращает число сессий в хранилище
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Oldest возвращает сессию с самым давним использованием
func (s *SessionStore) Oldest() (*entities.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var oldest *entities.Session
	for _, session := range s.sessions {
		if oldest == nil || session.LastUsed.Before(oldest.LastUsed) {
			oldest = session
		}
	}
	return oldest, oldest != nil
}
