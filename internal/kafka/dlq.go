package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cassiomorais/booking/internal/domain/event"
)

// DeadLetterRecord is the value published to a dead-letter topic after local
// retries are exhausted. It carries enough context for manual inspection and
// replay; nothing replays it automatically.
type DeadLetterRecord struct {
	Topic         string          `json:"topic"`
	Partition     int             `json:"partition"`
	Offset        int64           `json:"offset"`
	Key           string          `json:"key"`
	Value         json.RawMessage `json:"value"`
	Attempts      int             `json:"attempts"`
	LastError     string          `json:"last_error"`
	FailedAt      time.Time       `json:"failed_at"`
	ConsumerGroup string          `json:"consumer_group"`
}

// DeadLetterPublisher redirects permanently failing deliveries to the
// dead-letter topic paired with their origin topic, keyed by the original
// partition key.
type DeadLetterPublisher struct {
	producer *Producer
}

func NewDeadLetterPublisher(producer *Producer) *DeadLetterPublisher {
	return &DeadLetterPublisher{producer: producer}
}

func (d *DeadLetterPublisher) Publish(ctx context.Context, group string, m Message, attempts int, lastErr error) error {
	// Garbage payloads still have to make it to the dead-letter topic, so a
	// value that is not valid JSON is re-encoded as a JSON string.
	value := json.RawMessage(m.Value)
	if !json.Valid(m.Value) {
		quoted, err := json.Marshal(string(m.Value))
		if err != nil {
			return fmt.Errorf("quote dead-letter value: %w", err)
		}
		value = quoted
	}

	rec := DeadLetterRecord{
		Topic:         m.Topic,
		Partition:     m.Partition,
		Offset:        m.Offset,
		Key:           string(m.Key),
		Value:         value,
		Attempts:      attempts,
		LastError:     lastErr.Error(),
		FailedAt:      time.Now(),
		ConsumerGroup: group,
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal dead-letter record: %w", err)
	}
	return d.producer.Publish(ctx, event.DeadLetterTopic(m.Topic), string(m.Key), payload)
}
