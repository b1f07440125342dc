package service

import (
	"context"
	"time"

	"github.com/cassiomorais/booking/internal/domain/event"
	"github.com/cassiomorais/booking/internal/domain/outbox"
	"github.com/cassiomorais/booking/internal/domain/reservation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const aggregateReservation = "Reservation"

// TransactionManager runs fn inside one database transaction; repositories
// called from fn join it through the context.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReservationService owns the reservation aggregate. Commands mutate the
// aggregate and record outbox events in the same transaction; the event
// listener applies payment outcomes coming back from the payment service.
type ReservationService struct {
	reservations reservation.Repository
	outbox       outbox.Repository
	tx           TransactionManager
	logger       zerolog.Logger
}

func NewReservationService(
	reservations reservation.Repository,
	outboxRepo outbox.Repository,
	tx TransactionManager,
	logger zerolog.Logger,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		outbox:       outboxRepo,
		tx:           tx,
		logger:       logger.With().Str("service", "reservation").Logger(),
	}
}

// Create persists a new reservation and its ReservationCreated outbox record
// in one transaction. If the transaction aborts, neither exists; this is
// the atomicity anchor that substitutes for a distributed transaction with
// the broker.
func (s *ReservationService) Create(ctx context.Context, userID, resourceID uuid.UUID, from, to time.Time) (*reservation.Reservation, error) {
	res, err := reservation.NewReservation(userID, resourceID, from, to)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.reservations.Create(txCtx, res); err != nil {
			return err
		}
		rec, err := outbox.NewRecord(aggregateReservation, res.ID, event.ReservationCreated{
			ReservationID: res.ID,
			UserID:        res.UserID,
			ResourceID:    res.ResourceID,
			From:          res.StartTime,
			To:            res.EndTime,
		})
		if err != nil {
			return err
		}
		return s.outbox.Insert(txCtx, rec)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("reservation_id", res.ID.String()).
		Str("user_id", userID.String()).
		Msg("reservation created, outbox record queued")
	return res, nil
}

func (s *ReservationService) GetByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

func (s *ReservationService) List(ctx context.Context) ([]*reservation.Reservation, error) {
	return s.reservations.List(ctx)
}

func (s *ReservationService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*reservation.Reservation, error) {
	return s.reservations.ListByUser(ctx, userID)
}

// Cancel moves a reservation to CANCELLED. Cancelling an already-cancelled
// reservation is a no-op returning the current snapshot.
func (s *ReservationService) Cancel(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	var res *reservation.Reservation
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		res, err = s.reservations.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if !res.Cancel() {
			s.logger.Info().Str("reservation_id", id.String()).Msg("reservation already cancelled")
			return nil
		}
		return s.reservations.UpdateStatus(txCtx, res)
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ApplyPaymentOutcome maps a payment outcome onto the reservation status:
// CONFIRMED becomes PAID and FAILED becomes PAYMENT_FAILED. An unknown
// outcome is logged and skipped as a forward-compatibility affordance. A
// missing reservation is an error: it fails this delivery, not the
// consumer loop.
func (s *ReservationService) ApplyPaymentOutcome(ctx context.Context, reservationID uuid.UUID, paymentOutcome string) error {
	var newStatus reservation.Status
	switch paymentOutcome {
	case event.OutcomeConfirmed:
		newStatus = reservation.StatusPaid
	case event.OutcomeFailed:
		newStatus = reservation.StatusPaymentFailed
	default:
		s.logger.Warn().
			Str("reservation_id", reservationID.String()).
			Str("outcome", paymentOutcome).
			Msg("unknown payment outcome, skipping status update")
		return nil
	}

	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		res, err := s.reservations.GetByID(txCtx, reservationID)
		if err != nil {
			return err
		}
		if !res.ApplyStatus(newStatus) {
			s.logger.Warn().
				Str("reservation_id", reservationID.String()).
				Str("status", string(res.Status)).
				Str("target", string(newStatus)).
				Msg("status unchanged, skipping update")
			return nil
		}
		s.logger.Info().
			Str("reservation_id", reservationID.String()).
			Str("status", string(newStatus)).
			Msg("reservation status updated")
		return s.reservations.UpdateStatus(txCtx, res)
	})
}

// HandlePaymentEvent is the consumer handler for the payment-confirmed and
// payment-failed topics.
func (s *ReservationService) HandlePaymentEvent(ctx context.Context, evt event.Event) error {
	switch e := evt.(type) {
	case event.PaymentConfirmed:
		return s.ApplyPaymentOutcome(ctx, e.ReservationID, event.OutcomeConfirmed)
	case event.PaymentFailed:
		return s.ApplyPaymentOutcome(ctx, e.ReservationID, event.OutcomeFailed)
	default:
		s.logger.Warn().Str("event_type", evt.EventType()).Msg("unexpected event, skipping")
		return nil
	}
}
