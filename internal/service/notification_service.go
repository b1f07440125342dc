package service

import (
	"context"
	"errors"

	domainErrors "github.com/cassiomorais/booking/internal/domain/errors"
	"github.com/cassiomorais/booking/internal/domain/event"
	"github.com/cassiomorais/booking/internal/domain/notification"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NotificationService sends a notification per payment outcome, at most once
// per (payment, event type). The ledger row and the effect share one
// transaction; the ledger's unique constraint is what makes redelivery and
// concurrent delivery safe, the existence check is only a fast path.
type NotificationService struct {
	logs   notification.Repository
	tx     TransactionManager
	logger zerolog.Logger
}

func NewNotificationService(logs notification.Repository, tx TransactionManager, logger zerolog.Logger) *NotificationService {
	return &NotificationService{
		logs:   logs,
		tx:     tx,
		logger: logger.With().Str("service", "notification").Logger(),
	}
}

// HandlePaymentEvent is the consumer handler for both payment outcome topics.
func (s *NotificationService) HandlePaymentEvent(ctx context.Context, evt event.Event) error {
	switch e := evt.(type) {
	case event.PaymentConfirmed:
		return s.notify(ctx, e.PaymentID, evt.EventType(), "payment confirmation")
	case event.PaymentFailed:
		return s.notify(ctx, e.PaymentID, evt.EventType(), "payment failure")
	default:
		s.logger.Warn().Str("event_type", evt.EventType()).Msg("unexpected event, skipping")
		return nil
	}
}

func (s *NotificationService) notify(ctx context.Context, paymentID uuid.UUID, eventType, kind string) error {
	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		seen, err := s.logs.Exists(txCtx, paymentID, eventType)
		if err != nil {
			return err
		}
		if seen {
			s.logger.Warn().
				Str("payment_id", paymentID.String()).
				Str("event_type", eventType).
				Msg("duplicate event, skipping")
			return nil
		}

		if err := s.logs.Insert(txCtx, notification.NewLog(paymentID, eventType)); err != nil {
			if errors.Is(err, domainErrors.ErrAlreadyProcessed) {
				s.logger.Warn().
					Str("payment_id", paymentID.String()).
					Str("event_type", eventType).
					Msg("lost ledger insert race, skipping")
				return nil
			}
			return err
		}

		// The delivery channel is a log line; a real channel (email, push)
		// would be invoked here, inside the same transaction boundary.
		s.logger.Info().
			Str("payment_id", paymentID.String()).
			Msg(kind + " notification sent")
		return nil
	})
}
