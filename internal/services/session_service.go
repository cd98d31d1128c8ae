package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/rentgengl/copilot-1c-proxy/internal/config"
	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
	"github.com/rentgengl/copilot-1c-proxy/internal/interfaces"
)

// SessionService управляет пулом сессий апстрима: не больше одной живой
// сессии на ключ учетных данных, ленивое создание через рукопожатие,
// вытеснение по сроку жизни и по переполнению пула.
type SessionService struct {
	mu      sync.Mutex
	flights singleflight.Group

	repo    interfaces.SessionRepository
	client  interfaces.UpstreamClient
	log     *zap.Logger
	ttl     time.Duration
	max     int
	timeout time.Duration
}

func NewSessionService(cfg *config.AppConfig, repo interfaces.SessionRepository, client interfaces.UpstreamClient, log *zap.Logger) interfaces.SessionService {
	return &SessionService{
		repo:    repo,
		client:  client,
		log:     log.Named("sessions"),
		ttl:     cfg.SessionTTL(),
		max:     cfg.MaxActiveSessions,
		timeout: cfg.UpstreamTimeout(),
	}
}

// Acquire возвращает живую сессию для учетных данных. Быстрый путь - выдача
// из пула; иначе рукопожатие, общее для всех параллельных вызовов с одним
// ключом. forceNew сбрасывает текущую сессию и создает новую.
func (s *SessionService) Acquire(ctx context.Context, creds entities.Credentials, forceNew bool) (*entities.Session, error) {
	key := creds.Key()

	if forceNew {
		s.Invalidate(key)
	}

	s.mu.Lock()
	if session, found := s.repo.Get(key); found {
		if s.expired(session) {
			session.Valid = false
			s.repo.Delete(key)
			s.log.Debug("сессия истекла", zap.String("session_key", key))
		} else if session.Valid {
			s.touchLocked(session)
			s.mu.Unlock()
			return session, nil
		}
	}
	s.mu.Unlock()

	ch := s.flights.DoChan(key, func() (any, error) {
		return s.handshake(creds)
	})

	select {
	case <-ctx.Done():
		// Рукопожатие продолжается в фоне, его результат достанется
		// следующему вызову с этим же ключом.
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		session := res.Val.(*entities.Session)
		s.mu.Lock()
		s.touchLocked(session)
		s.mu.Unlock()
		return session, nil
	}
}

// handshake создает новую дискуссию апстрима и кладет сессию в пул.
// Выполняется на отвязанном контексте: отмена одного из ожидающих не должна
// портить общий результат.
func (s *SessionService) handshake(creds entities.Credentials) (*entities.Session, error) {
	key := creds.Key()

	// Пока этот вызов стоял в очереди, сессию мог создать предыдущий полет.
	s.mu.Lock()
	if session, found := s.repo.Get(key); found && session.Valid && !s.expired(session) {
		s.mu.Unlock()
		return session, nil
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	conversationID, err := s.client.CreateConversation(ctx, creds.Token, creds.ProgrammingLanguage)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &entities.Session{
		Key:            key,
		ConversationID: conversationID,
		CreatedAt:      now,
		LastUsed:       now,
		Valid:          true,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictIfFullLocked()
	s.repo.Set(key, session)
	s.log.Info("создана сессия апстрима",
		zap.String("session_key", key),
		zap.String("conversation_id", conversationID),
	)
	return session, nil
}

// evictIfFullLocked освобождает место в пуле, вытесняя сессии с самым давним
// использованием. Вызывается под s.mu.
func (s *SessionService) evictIfFullLocked() {
	for s.repo.Len() >= s.max {
		oldest, found := s.repo.Oldest()
		if !found {
			return
		}
		oldest.Valid = false
		s.repo.Delete(oldest.Key)
		s.log.Warn("пул сессий переполнен, сессия вытеснена",
			zap.String("session_key", oldest.Key),
			zap.Time("last_used", oldest.LastUsed),
		)
	}
}

// touchLocked отмечает выдачу сессии. Вызывается под s.mu.
func (s *SessionService) touchLocked(session *entities.Session) {
	session.LastUsed = time.Now()
	session.UseCount++
}

// Release фиксирует завершение использования сессии. Сетевых вызовов нет:
// дискуссии апстрима живут до вытеснения или истечения срока.
func (s *SessionService) Release(session *entities.Session) {
	if session == nil {
		return
	}
	s.mu.Lock()
	session.LastUsed = time.Now()
	s.mu.Unlock()
}

// Invalidate помечает сессию недействительной и убирает ее из пула.
// Уже выданные копии укажут на невалидную сессию, их вызовы завершатся
// штатной ошибкой аутентификации.
func (s *SessionService) Invalidate(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, found := s.repo.Get(key)
	if !found {
		return false
	}
	session.Valid = false
	s.repo.Delete(key)
	s.log.Info("сессия аннулирована", zap.String("session_key", key))
	return true
}

// Sessions возвращает снимки всех сессий пула, старые первыми.
func (s *SessionService) Sessions() []entities.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.repo.List()
	infos := make([]entities.SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, session.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

// Sweep убирает из пула сессии с истекшим сроком жизни. Возвращает число
// вытесненных.
func (s *SessionService) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, session := range s.repo.List() {
		if s.expired(session) {
			session.Valid = false
			s.repo.Delete(session.Key)
			count++
		}
	}
	if count > 0 {
		s.log.Info("вытеснены истекшие сессии", zap.Int("count", count))
	}
	return count
}

// Shutdown очищает пул. Вызывается при остановке приложения.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := s.repo.List()
	for _, session := range sessions {
		session.Valid = false
		s.repo.Delete(session.Key)
	}
	if len(sessions) > 0 {
		s.log.Info("пул сессий очищен", zap.Int("count", len(sessions)))
	}
}

// expired сообщает, истек ли срок жизни сессии. Вызывается под s.mu.
func (s *SessionService) expired(session *entities.Session) bool {
	return s.ttl > 0 && time.Since(session.LastUsed) > s.ttl
}
