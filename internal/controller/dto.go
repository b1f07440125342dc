package controller

import (
	"time"

	"github.com/cassiomorais/booking/internal/domain/payment"
	"github.com/cassiomorais/booking/internal/domain/reservation"
	"github.com/cassiomorais/booking/internal/domain/user"
	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type CreateUserRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

type CreateReservationRequest struct {
	UserID     uuid.UUID `json:"user_id" validate:"required"`
	ResourceID uuid.UUID `json:"resource_id" validate:"required"`
	From       time.Time `json:"from" validate:"required"`
	To         time.Time `json:"to" validate:"required"`
}

type ReservationResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	ResourceID uuid.UUID `json:"resource_id"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func toReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		ResourceID: r.ResourceID,
		From:       r.StartTime,
		To:         r.EndTime,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
	}
}

type CreatePaymentRequest struct {
	ReservationID uuid.UUID `json:"reservation_id" validate:"required"`
	AmountCents   int64     `json:"amount_cents" validate:"required,gt=0"`
}

type FailPaymentRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type PaymentResponse struct {
	ID            uuid.UUID `json:"id"`
	ReservationID uuid.UUID `json:"reservation_id"`
	AmountCents   int64     `json:"amount_cents"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func toPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		ReservationID: p.ReservationID,
		AmountCents:   p.AmountCents,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
	}
}
