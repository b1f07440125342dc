package reservation

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new reservation (joins the transaction in ctx).
	Create(ctx context.Context, r *Reservation) error

	// GetByID returns the reservation or errors.ErrReservationNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error)

	// UpdateStatus persists the current status of the reservation.
	UpdateStatus(ctx context.Context, r *Reservation) error

	// ListByUser returns all reservations owned by a user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Reservation, error)

	// List returns all reservations.
	List(ctx context.Context) ([]*Reservation, error)
}
