package payment

import (
	"time"

	"github.com/cassiomorais/booking/internal/domain/errors"
	"github.com/google/uuid"
)

// Status represents the payment status in the state machine
type Status string

const (
	StatusCreated   Status = "CREATED"
	StatusConfirmed Status = "CONFIRMED"
	StatusFailed    Status = "FAILED"
)

// Payment references its reservation by id only; the reservation service
// owns the reservation aggregate and learns the outcome through events.
type Payment struct {
	ID            uuid.UUID
	ReservationID uuid.UUID
	AmountCents   int64
	Status        Status
	CreatedAt     time.Time
}

// NewPayment creates a payment in CREATED status.
func NewPayment(reservationID uuid.UUID, amountCents int64) (*Payment, error) {
	if amountCents <= 0 {
		return nil, errors.ErrInvalidAmount
	}
	return &Payment{
		ID:            uuid.New(),
		ReservationID: reservationID,
		AmountCents:   amountCents,
		Status:        StatusCreated,
		CreatedAt:     time.Now(),
	}, nil
}

// IsTerminal checks if the payment is in a terminal state. CONFIRMED and
// FAILED are both terminal.
func (p *Payment) IsTerminal() bool {
	return p.Status == StatusConfirmed || p.Status == StatusFailed
}

// Confirm moves the payment to CONFIRMED and reports whether the status
// changed. Confirming a payment that is already terminal is a silent no-op:
// the caller still gets the current snapshot, never an error. Strict
// rejection was deliberately traded away for idempotency under redelivery.
func (p *Payment) Confirm() bool {
	if p.IsTerminal() {
		return false
	}
	p.Status = StatusConfirmed
	return true
}

// Fail moves the payment to FAILED under the same no-op policy as Confirm.
func (p *Payment) Fail() bool {
	if p.IsTerminal() {
		return false
	}
	p.Status = StatusFailed
	return true
}
