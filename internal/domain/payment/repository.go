package payment

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new payment (joins the transaction in ctx). The
	// storage layer enforces at most one payment per reservation; a
	// duplicate insert returns errors.ErrPaymentAlreadyExists.
	Create(ctx context.Context, p *Payment) error

	// GetByID returns the payment or errors.ErrPaymentNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// ExistsByReservationID reports whether a payment exists for the
	// reservation. Fast path only; the unique constraint is what actually
	// closes the concurrent-delivery race.
	ExistsByReservationID(ctx context.Context, reservationID uuid.UUID) (bool, error)

	// ListByReservationID returns payments keyed to a reservation.
	ListByReservationID(ctx context.Context, reservationID uuid.UUID) ([]*Payment, error)

	// UpdateStatus persists the current status of the payment.
	UpdateStatus(ctx context.Context, p *Payment) error
}
