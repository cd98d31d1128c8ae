package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Credentials - учетные данные для доступа к апстриму. Токен либо берется из
// конфигурации, либо пробрасывается из заголовка Authorization входящего запроса.
// ProgrammingLanguage - подсказка для рукопожатия, сессию она не идентифицирует.
type Credentials struct {
	Token               string
	ProgrammingLanguage string
}

// Key возвращает ключ пула для данных учетных данных. Сырой токен никогда не
// используется как ключ и не попадает в логи и ответы.
func (c Credentials) Key() string {
	sum := sha256.Sum256([]byte(c.Token))
	return hex.EncodeToString(sum[:16])
}

// Session представляет аутентифицированную сессию апстрима в пуле.
// Владелец и единственный мутатор состояния - сервис сессий; все остальные
// получают копии через Info().
type Session struct {
	Key            string
	ConversationID string
	CreatedAt      time.Time
	LastUsed       time.Time
	UseCount       int64
	Valid          bool
}

// Info возвращает снимок сессии для выдачи наружу.
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		SessionKey:     s.Key,
		ConversationID: s.ConversationID,
		CreatedAt:      s.CreatedAt,
		LastUsed:       s.LastUsed,
		UseCount:       s.UseCount,
		IsValid:        s.Valid,
	}
}

// SessionInfo - снимок активной сессии для списков и аудита.
type SessionInfo struct {
	SessionKey     string    `json:"session_key"`
	ConversationID string    `json:"conversation_id"`
	CreatedAt      time.Time `json:"created_at"`
	LastUsed       time.Time `json:"last_used"`
	UseCount       int64     `json:"use_count"`
	IsValid        bool      `json:"is_valid"`
}
