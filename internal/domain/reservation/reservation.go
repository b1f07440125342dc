package reservation

import (
	"time"

	"github.com/cassiomorais/booking/internal/domain/errors"
	"github.com/google/uuid"
)

// Status represents the reservation status in the state machine
type Status string

const (
	StatusCreated       Status = "CREATED"
	StatusPaid          Status = "PAID"
	StatusPaymentFailed Status = "PAYMENT_FAILED"
	StatusCancelled     Status = "CANCELLED"
)

// Reservation represents a booked resource for a user over a time window.
type Reservation struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ResourceID uuid.UUID
	StartTime  time.Time
	EndTime    time.Time
	Status     Status
	CreatedAt  time.Time
}

// NewReservation creates a reservation in CREATED status.
func NewReservation(userID, resourceID uuid.UUID, from, to time.Time) (*Reservation, error) {
	if !from.Before(to) {
		return nil, errors.ErrInvalidPeriod
	}
	return &Reservation{
		ID:         uuid.New(),
		UserID:     userID,
		ResourceID: resourceID,
		StartTime:  from,
		EndTime:    to,
		Status:     StatusCreated,
		CreatedAt:  time.Now(),
	}, nil
}

// transitions is the forward-moving status lattice. CANCELLED is reachable
// from every state and has no exit.
var transitions = map[Status][]Status{
	StatusCreated:       {StatusPaid, StatusPaymentFailed, StatusCancelled},
	StatusPaid:          {StatusCancelled},
	StatusPaymentFailed: {StatusCancelled},
	StatusCancelled:     {},
}

// CanTransitionTo checks if the reservation can move to the given status.
func (r *Reservation) CanTransitionTo(newStatus Status) bool {
	for _, allowed := range transitions[r.Status] {
		if allowed == newStatus {
			return true
		}
	}
	return false
}

// ApplyStatus moves the reservation to newStatus and reports whether the
// status actually changed. Re-applying the current status and applying a
// status the lattice forbids are both silent no-ops rather than errors.
// The permissive policy is what makes redelivered status events safe.
func (r *Reservation) ApplyStatus(newStatus Status) bool {
	if r.Status == newStatus {
		return false
	}
	if !r.CanTransitionTo(newStatus) {
		return false
	}
	r.Status = newStatus
	return true
}

// Cancel moves the reservation to CANCELLED. Already-cancelled reservations
// are left untouched.
func (r *Reservation) Cancel() bool {
	return r.ApplyStatus(StatusCancelled)
}
