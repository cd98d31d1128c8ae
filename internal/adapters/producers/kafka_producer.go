package producers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/rentgengl/copilot-1c-proxy/internal/config"
	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
	"github.com/rentgengl/copilot-1c-proxy/internal/interfaces"
)

type KafkaProducer struct {
	writer *kafka.Writer
}

// NewAuditProducer создает продюсер событий аудита. Если брокеры не заданы,
// возвращается заглушка: шлюз работает без шины аудита.
func NewAuditProducer(cfg *config.AppConfig, log *zap.Logger) (interfaces.AuditProducer, error) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("брокеры Kafka не заданы, аудит отключен")
		return &NoopProducer{}, nil
	}
	if cfg.KafkaTopic == "" {
		return nil, fmt.Errorf("задан брокер Kafka, но не задан топик аудита (KAFKA_TOPIC)")
	}
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBrokers...),
		Topic:    cfg.KafkaTopic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("продюсер аудита подключен",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopic),
	)
	return &KafkaProducer{writer: writer}, nil
}

// Produce отправляет событие аудита в Kafka. Ключом служит идентификатор
// запроса, чтобы события одного запроса попадали в одну партицию.
func (p *KafkaProducer) Produce(ctx context.Context, event entities.AuditEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать событие аудита: %w", err)
	}
	key := event.RequestID
	if key == "" {
		key = event.EventID
	}
	return p.writer.WriteMessages(ctx,
		kafka.Message{
			Key:   []byte(key),
			Value: value,
		},
	)
}

// Close закрывает соединение с Kafka
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// NoopProducer - продюсер-заглушка для запуска без Kafka.
type NoopProducer struct{}

func (p *NoopProducer) Produce(context.Context, entities.AuditEvent) error { return nil }

func (p *NoopProducer) Close() error { return nil }
