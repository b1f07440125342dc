package event

import (
	"time"

	"github.com/google/uuid"
)

// Stable event type tags. They are stored in outbox rows, used as the
// serialization discriminator by the registry, and combined with the subject
// id as the consumer-side idempotency key. Renaming one is a wire-format
// break.
const (
	TypeReservationCreated = "ReservationCreated"
	TypePaymentConfirmed   = "PaymentConfirmed"
	TypePaymentFailed      = "PaymentFailed"
)

// Payment outcome values carried inside payment events.
const (
	OutcomeConfirmed = "CONFIRMED"
	OutcomeFailed    = "FAILED"
)

// Event is a domain event that can be recorded in the outbox and published
// to the broker. Key returns the partition/ordering key (the aggregate id),
// so events for one aggregate reach a consumer in publish order.
type Event interface {
	EventType() string
	Key() string
}

// ReservationCreated is emitted by the reservation service when a new
// reservation is persisted.
type ReservationCreated struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	UserID        uuid.UUID `json:"user_id"`
	ResourceID    uuid.UUID `json:"resource_id"`
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
}

func (ReservationCreated) EventType() string { return TypeReservationCreated }
func (e ReservationCreated) Key() string     { return e.ReservationID.String() }

// PaymentConfirmed is emitted by the payment service when a payment reaches
// CONFIRMED.
type PaymentConfirmed struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	Status        string    `json:"status"`
}

func (PaymentConfirmed) EventType() string { return TypePaymentConfirmed }
func (e PaymentConfirmed) Key() string     { return e.PaymentID.String() }

// PaymentFailed is emitted by the payment service when a payment reaches
// FAILED.
type PaymentFailed struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	Reason        string    `json:"reason"`
}

func (PaymentFailed) EventType() string { return TypePaymentFailed }
func (e PaymentFailed) Key() string     { return e.PaymentID.String() }
