package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Log is one entry in the notification service's idempotency ledger. The
// (PaymentID, EventType) pair is unique at the storage layer; existence of a
// row means the notification for that logical event already went out.
type Log struct {
	ID        uuid.UUID
	PaymentID uuid.UUID
	EventType string
	SentAt    time.Time
}

// NewLog builds a ledger entry for a processed event.
func NewLog(paymentID uuid.UUID, eventType string) *Log {
	return &Log{
		ID:        uuid.New(),
		PaymentID: paymentID,
		EventType: eventType,
		SentAt:    time.Now(),
	}
}

type Repository interface {
	// Insert writes a ledger entry. A duplicate (paymentID, eventType)
	// violates the unique constraint and surfaces as
	// errors.ErrAlreadyProcessed. That constraint, not the Exists fast
	// path, is the correctness mechanism under concurrent delivery.
	Insert(ctx context.Context, l *Log) error

	// Exists reports whether the event was already processed. Fast path
	// before attempting the insert.
	Exists(ctx context.Context, paymentID uuid.UUID, eventType string) (bool, error)
}
