package outbox

import (
	"time"

	"github.com/cassiomorais/booking/internal/domain/event"
	"github.com/google/uuid"
)

// Status of an outbox record. A record is NEW until the relay observes it;
// the first relay pass flips it to exactly one of SENT or FAILED and neither
// is ever reverted. FAILED records are not retried by the relay.
type Status string

const (
	StatusNew    Status = "NEW"
	StatusSent   Status = "SENT"
	StatusFailed Status = "FAILED"
)

// Record is one durable pending event, written in the same transaction as
// the aggregate mutation it describes. Records are never deleted; SENT and
// FAILED rows remain as an audit log.
type Record struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   uuid.UUID
	EventType     string
	Payload       []byte
	Status        Status
	CreatedAt     time.Time
}

// NewRecord builds a NEW record from a domain event.
func NewRecord(aggregateType string, aggregateID uuid.UUID, e event.Event) (*Record, error) {
	payload, err := event.Encode(e)
	if err != nil {
		return nil, err
	}
	return &Record{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     e.EventType(),
		Payload:       payload,
		Status:        StatusNew,
		CreatedAt:     time.Now(),
	}, nil
}
