package producers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rentgengl/copilot-1c-proxy/internal/config"
	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
)

func TestNewAuditProducer(t *testing.T) {
	t.Run("без брокеров включается заглушка", testProducerNoop)
	t.Run("брокер без топика это ошибка конфигурации", testProducerMissingTopic)
	t.Run("с брокерами создается продюсер Kafka", testProducerKafka)
}

func testProducerNoop(t *testing.T) {
	producer, err := NewAuditProducer(&config.AppConfig{}, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &NoopProducer{}, producer)

	require.NoError(t, producer.Produce(context.Background(), entities.AuditEvent{EventID: "e-1"}))
	require.NoError(t, producer.Close())
}

func testProducerMissingTopic(t *testing.T) {
	_, err := NewAuditProducer(&config.AppConfig{
		KafkaBrokers: []string{"kafka-1:9092"},
	}, zap.NewNop())
	require.Error(t, err)
	require.Contains(t, err.Error(), "топик")
}

func testProducerKafka(t *testing.T) {
	producer, err := NewAuditProducer(&config.AppConfig{
		KafkaBrokers: []string{"kafka-1:9092"},
		KafkaTopic:   "gateway-audit",
	}, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &KafkaProducer{}, producer)

	// Писатель ленивый: закрытие без отправок не ходит в сеть.
	require.NoError(t, producer.Close())
}
