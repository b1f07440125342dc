package kafka

import (
	"context"
	"fmt"

	"github.com/cassiomorais/booking/internal/config"
	domainErrors "github.com/cassiomorais/booking/internal/domain/errors"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

// Producer publishes messages keyed by aggregate id. The Hash balancer maps
// equal keys to the same partition, which is what gives per-aggregate
// ordering on the consumer side.
type Producer struct {
	writer  *kafka.Writer
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewProducer(cfg *config.KafkaConfig) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name: "kafka-producer",
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.CircuitBreakerThreshold
		},
		Timeout: cfg.CircuitBreakerTimeout,
	})

	return &Producer{writer: writer, breaker: breaker}
}

// Publish writes one message. An open breaker fails fast with
// ErrBrokerUnavailable instead of stacking writes on a dead broker.
func (p *Producer) Publish(ctx context.Context, topic, key string, value []byte) error {
	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.writer.WriteMessages(ctx, kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		})
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return fmt.Errorf("%w: %v", domainErrors.ErrBrokerUnavailable, err)
		}
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
