package services

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rentgengl/copilot-1c-proxy/internal/config"
	"github.com/rentgengl/copilot-1c-proxy/internal/interfaces"
)

// JanitorService - фоновая чистка пула: периодически вытесняет сессии с
// истекшим сроком жизни. Ленивая проверка в Acquire защищает корректность и
// без него, чистка лишь возвращает память и места в пуле.
type JanitorService struct {
	sessions interfaces.SessionService
	log      *zap.Logger
	interval time.Duration

	mu     sync.Mutex
	ticker *time.Ticker
	done   chan bool
}

func NewJanitorService(cfg *config.AppConfig, sessions interfaces.SessionService, log *zap.Logger) interfaces.Janitor {
	return &JanitorService{
		sessions: sessions,
		log:      log.Named("janitor"),
		interval: sweepInterval(cfg.SessionTTL()),
	}
}

// sweepInterval выводит период чистки из срока жизни сессии.
func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < 15*time.Second {
		return 15 * time.Second
	}
	if interval > 5*time.Minute {
		return 5 * time.Minute
	}
	return interval
}

func (s *JanitorService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.interval)
	s.done = make(chan bool)

	ticker, done := s.ticker, s.done
	go func() {
		s.log.Info("запущена чистка пула сессий", zap.Duration("interval", s.interval))
		for {
			select {
			case <-done:
				s.log.Info("чистка пула сессий остановлена")
				return
			case <-ticker.C:
				s.sessions.Sweep()
			}
		}
	}()
}

func (s *JanitorService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker == nil {
		return
	}

	s.ticker.Stop()
	s.done <- true
	close(s.done)
	s.ticker = nil
	s.done = nil
}
