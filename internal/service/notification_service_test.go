package service_test

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/cassiomorais/booking/internal/domain/errors"
	"github.com/cassiomorais/booking/internal/domain/event"
	"github.com/cassiomorais/booking/internal/domain/notification"
	"github.com/cassiomorais/booking/internal/service"
	"github.com/cassiomorais/booking/internal/testutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotificationService(logs notification.Repository) *service.NotificationService {
	return service.NewNotificationService(logs, &testutil.MockTransactionManager{}, zerolog.Nop())
}

func TestNotificationService_HandlePaymentEvent(t *testing.T) {
	logs := testutil.NewMockNotificationRepository()
	svc := newNotificationService(logs)

	paymentID := uuid.New()
	evt := event.PaymentConfirmed{
		PaymentID:     paymentID,
		ReservationID: uuid.New(),
		Status:        event.OutcomeConfirmed,
	}

	require.NoError(t, svc.HandlePaymentEvent(context.Background(), evt))
	assert.Equal(t, 1, logs.Count())

	seen, err := logs.Exists(context.Background(), paymentID, event.TypePaymentConfirmed)
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestNotificationService_DuplicateDeliverySkipped(t *testing.T) {
	logs := testutil.NewMockNotificationRepository()
	svc := newNotificationService(logs)

	evt := event.PaymentFailed{
		PaymentID:     uuid.New(),
		ReservationID: uuid.New(),
		Reason:        "card declined",
	}

	require.NoError(t, svc.HandlePaymentEvent(context.Background(), evt))
	require.NoError(t, svc.HandlePaymentEvent(context.Background(), evt))
	assert.Equal(t, 1, logs.Count())
}

func TestNotificationService_DistinctEventTypesBothNotify(t *testing.T) {
	// The ledger key is (payment, event type): a confirmation and a
	// failure for the same payment are two distinct notifications.
	logs := testutil.NewMockNotificationRepository()
	svc := newNotificationService(logs)

	paymentID := uuid.New()
	reservationID := uuid.New()

	require.NoError(t, svc.HandlePaymentEvent(context.Background(), event.PaymentConfirmed{
		PaymentID:     paymentID,
		ReservationID: reservationID,
		Status:        event.OutcomeConfirmed,
	}))
	require.NoError(t, svc.HandlePaymentEvent(context.Background(), event.PaymentFailed{
		PaymentID:     paymentID,
		ReservationID: reservationID,
		Reason:        "chargeback",
	}))

	assert.Equal(t, 2, logs.Count())
}

func TestNotificationService_LostInsertRaceSkipped(t *testing.T) {
	// The existence check misses a concurrent insert; the constraint
	// violation is absorbed, not surfaced.
	logs := testutil.NewMockNotificationRepository()
	logs.ExistsFunc = func(ctx context.Context, paymentID uuid.UUID, eventType string) (bool, error) {
		return false, nil
	}
	logs.InsertFunc = func(ctx context.Context, l *notification.Log) error {
		return domainErrors.ErrAlreadyProcessed
	}
	svc := newNotificationService(logs)

	err := svc.HandlePaymentEvent(context.Background(), event.PaymentConfirmed{
		PaymentID:     uuid.New(),
		ReservationID: uuid.New(),
		Status:        event.OutcomeConfirmed,
	})
	assert.NoError(t, err)
}

func TestNotificationService_InsertErrorPropagates(t *testing.T) {
	logs := testutil.NewMockNotificationRepository()
	logs.InsertFunc = func(ctx context.Context, l *notification.Log) error {
		return errors.New("connection reset")
	}
	svc := newNotificationService(logs)

	err := svc.HandlePaymentEvent(context.Background(), event.PaymentConfirmed{
		PaymentID:     uuid.New(),
		ReservationID: uuid.New(),
		Status:        event.OutcomeConfirmed,
	})
	assert.Error(t, err)
}

func TestNotificationService_UnexpectedEventSkipped(t *testing.T) {
	logs := testutil.NewMockNotificationRepository()
	svc := newNotificationService(logs)

	err := svc.HandlePaymentEvent(context.Background(), event.ReservationCreated{ReservationID: uuid.New()})
	assert.NoError(t, err)
	assert.Equal(t, 0, logs.Count())
}
