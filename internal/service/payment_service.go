package service

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/cassiomorais/booking/internal/domain/errors"
	"github.com/cassiomorais/booking/internal/domain/event"
	"github.com/cassiomorais/booking/internal/domain/outbox"
	"github.com/cassiomorais/booking/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const aggregatePayment = "Payment"

// defaultAmountCents is charged for payments created from a
// ReservationCreated event. Pricing is out of scope for the pipeline.
const defaultAmountCents = 100_00

// PaymentService owns the payment aggregate. It consumes ReservationCreated
// events to open payments and emits PaymentConfirmed/PaymentFailed through
// the outbox when a payment settles.
type PaymentService struct {
	payments payment.Repository
	outbox   outbox.Repository
	tx       TransactionManager
	logger   zerolog.Logger
}

func NewPaymentService(
	payments payment.Repository,
	outboxRepo outbox.Repository,
	tx TransactionManager,
	logger zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		payments: payments,
		outbox:   outboxRepo,
		tx:       tx,
		logger:   logger.With().Str("service", "payment").Logger(),
	}
}

// Create opens a payment through the command surface. Unlike the event path,
// a duplicate here is a caller mistake and surfaces as a conflict error.
func (s *PaymentService) Create(ctx context.Context, reservationID uuid.UUID, amountCents int64) (*payment.Payment, error) {
	exists, err := s.payments.ExistsByReservationID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domainErrors.ErrPaymentAlreadyExists
	}

	p, err := payment.NewPayment(reservationID, amountCents)
	if err != nil {
		return nil, err
	}
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.payments.Create(txCtx, p)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("payment_id", p.ID.String()).
		Str("reservation_id", reservationID.String()).
		Msg("payment created")
	return p, nil
}

// Confirm settles a payment as CONFIRMED and queues a PaymentConfirmed
// outbox record in the same transaction. Confirming a payment that is
// already terminal (CONFIRMED or FAILED) changes nothing and emits nothing;
// the current snapshot is returned either way.
func (s *PaymentService) Confirm(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return s.settle(ctx, id, func(p *payment.Payment) (bool, event.Event) {
		if !p.Confirm() {
			return false, nil
		}
		return true, event.PaymentConfirmed{
			PaymentID:     p.ID,
			ReservationID: p.ReservationID,
			Status:        event.OutcomeConfirmed,
		}
	})
}

// Fail settles a payment as FAILED under the same terminal no-op policy as
// Confirm.
func (s *PaymentService) Fail(ctx context.Context, id uuid.UUID, reason string) (*payment.Payment, error) {
	return s.settle(ctx, id, func(p *payment.Payment) (bool, event.Event) {
		if !p.Fail() {
			return false, nil
		}
		return true, event.PaymentFailed{
			PaymentID:     p.ID,
			ReservationID: p.ReservationID,
			Reason:        reason,
		}
	})
}

func (s *PaymentService) settle(ctx context.Context, id uuid.UUID, apply func(*payment.Payment) (bool, event.Event)) (*payment.Payment, error) {
	var p *payment.Payment
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		p, err = s.payments.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		changed, evt := apply(p)
		if !changed {
			s.logger.Warn().
				Str("payment_id", id.String()).
				Str("status", string(p.Status)).
				Msg("payment already terminal, skipping")
			return nil
		}

		if err := s.payments.UpdateStatus(txCtx, p); err != nil {
			return err
		}
		rec, err := outbox.NewRecord(aggregatePayment, p.ID, evt)
		if err != nil {
			return fmt.Errorf("record %s: %w", evt.EventType(), err)
		}
		if err := s.outbox.Insert(txCtx, rec); err != nil {
			return err
		}
		s.logger.Info().
			Str("payment_id", p.ID.String()).
			Str("reservation_id", p.ReservationID.String()).
			Str("event_type", evt.EventType()).
			Msg("payment settled, outbox record queued")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *PaymentService) ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]*payment.Payment, error) {
	return s.payments.ListByReservationID(ctx, reservationID)
}

// ProcessReservationCreated opens a payment for a freshly created
// reservation. Idempotent by construction: the existence check skips
// duplicates cheaply, and the unique constraint on reservation_id catches
// the concurrent-delivery race the check cannot see.
func (s *PaymentService) ProcessReservationCreated(ctx context.Context, evt event.ReservationCreated) error {
	exists, err := s.payments.ExistsByReservationID(ctx, evt.ReservationID)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Warn().
			Str("reservation_id", evt.ReservationID.String()).
			Msg("payment already exists for reservation, skipping")
		return nil
	}

	p, err := payment.NewPayment(evt.ReservationID, defaultAmountCents)
	if err != nil {
		return err
	}
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.payments.Create(txCtx, p)
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrPaymentAlreadyExists) {
			s.logger.Warn().
				Str("reservation_id", evt.ReservationID.String()).
				Msg("lost insert race for reservation payment, skipping")
			return nil
		}
		return err
	}

	s.logger.Info().
		Str("payment_id", p.ID.String()).
		Str("reservation_id", evt.ReservationID.String()).
		Msg("payment created for reservation")
	return nil
}

// HandleReservationCreated is the consumer handler for the
// reservation-created topic.
func (s *PaymentService) HandleReservationCreated(ctx context.Context, evt event.Event) error {
	e, ok := evt.(event.ReservationCreated)
	if !ok {
		s.logger.Warn().Str("event_type", evt.EventType()).Msg("unexpected event, skipping")
		return nil
	}
	return s.ProcessReservationCreated(ctx, e)
}
