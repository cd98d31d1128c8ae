package interfaces

import "github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"

// SessionRepository определяет контракт для хранилища сессий пула.
// Ключ - производный ключ учетных данных, не сырой токен.
type SessionRepository interface {
	Set(key string, session *entities.Session)
	Get(key string) (*entities.Session, bool)
	Delete(key string) bool
	List() []*entities.Session
	Len() int
	// Oldest возвращает сессию с самым давним использованием - кандидата
	// на вытеснение при переполнении пула.
	Oldest() (*entities.Session, bool)
}
