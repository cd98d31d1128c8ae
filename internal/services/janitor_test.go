package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
)

func TestSweepInterval(t *testing.T) {
	// Четверть срока жизни, в границах от 15 секунд до 5 минут.
	require.Equal(t, 15*time.Second, sweepInterval(10*time.Second))
	require.Equal(t, time.Minute, sweepInterval(4*time.Minute))
	require.Equal(t, 5*time.Minute, sweepInterval(10*time.Hour))
}

func TestJanitorSweeps(t *testing.T) {
	upstream := &fakeUpstream{}
	pool, repo := newTestPool(poolConfig(), upstream)

	creds := entities.Credentials{Token: "token-a"}
	_, err := pool.Acquire(context.Background(), creds, false)
	require.NoError(t, err)

	stored, found := repo.Get(creds.Key())
	require.True(t, found)
	stored.LastUsed = time.Now().Add(-2 * time.Hour)

	janitor := &JanitorService{
		sessions: pool,
		log:      zap.NewNop(),
		interval: 10 * time.Millisecond,
	}
	janitor.Start()
	defer janitor.Stop()

	require.Eventually(t, func() bool {
		return len(pool.Sessions()) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestJanitorStartStop(t *testing.T) {
	pool, _ := newTestPool(poolConfig(), &fakeUpstream{})
	janitor := NewJanitorService(poolConfig(), pool, zap.NewNop())

	// Остановка до запуска и повторные вызовы безопасны.
	janitor.Stop()
	janitor.Start()
	janitor.Start()
	janitor.Stop()
	janitor.Stop()
}
