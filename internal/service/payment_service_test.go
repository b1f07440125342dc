package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	domainErrors "github.com/cassiomorais/booking/internal/domain/errors"
	"github.com/cassiomorais/booking/internal/domain/event"
	"github.com/cassiomorais/booking/internal/domain/payment"
	"github.com/cassiomorais/booking/internal/service"
	"github.com/cassiomorais/booking/internal/testutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPaymentService(payments payment.Repository, outboxRepo *testutil.MockOutboxRepository) *service.PaymentService {
	return service.NewPaymentService(payments, outboxRepo, &testutil.MockTransactionManager{}, zerolog.Nop())
}

func reservationCreatedEvent() event.ReservationCreated {
	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return event.ReservationCreated{
		ReservationID: uuid.New(),
		UserID:        uuid.New(),
		ResourceID:    uuid.New(),
		From:          from,
		To:            from.Add(2 * time.Hour),
	}
}

func TestPaymentService_Create(t *testing.T) {
	payments := testutil.NewMockPaymentRepository()
	svc := newPaymentService(payments, testutil.NewMockOutboxRepository())

	reservationID := uuid.New()
	p, err := svc.Create(context.Background(), reservationID, 250_00)
	require.NoError(t, err)
	assert.Equal(t, reservationID, p.ReservationID)
	assert.Equal(t, payment.StatusCreated, p.Status)

	// A second payment for the same reservation is a caller error.
	_, err = svc.Create(context.Background(), reservationID, 250_00)
	assert.ErrorIs(t, err, domainErrors.ErrPaymentAlreadyExists)
}

func TestPaymentService_ConfirmQueuesOutboxRecord(t *testing.T) {
	payments := testutil.NewMockPaymentRepository()
	outboxRepo := testutil.NewMockOutboxRepository()
	svc := newPaymentService(payments, outboxRepo)

	p, err := svc.Create(context.Background(), uuid.New(), 100_00)
	require.NoError(t, err)

	confirmed, err := svc.Confirm(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusConfirmed, confirmed.Status)

	records := outboxRepo.Records()
	require.Len(t, records, 1)
	assert.Equal(t, event.TypePaymentConfirmed, records[0].EventType)
	assert.Equal(t, p.ID, records[0].AggregateID)
}

func TestPaymentService_ConfirmTerminalIsNoOp(t *testing.T) {
	payments := testutil.NewMockPaymentRepository()
	outboxRepo := testutil.NewMockOutboxRepository()
	svc := newPaymentService(payments, outboxRepo)

	p, err := svc.Create(context.Background(), uuid.New(), 100_00)
	require.NoError(t, err)

	_, err = svc.Fail(context.Background(), p.ID, "card declined")
	require.NoError(t, err)

	// Settling again must not flip the status or emit a second event.
	got, err := svc.Confirm(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, got.Status)
	assert.Len(t, outboxRepo.Records(), 1)

	got, err = svc.Fail(context.Background(), p.ID, "again")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, got.Status)
	assert.Len(t, outboxRepo.Records(), 1)
}

func TestPaymentService_FailQueuesReason(t *testing.T) {
	payments := testutil.NewMockPaymentRepository()
	outboxRepo := testutil.NewMockOutboxRepository()
	svc := newPaymentService(payments, outboxRepo)

	p, err := svc.Create(context.Background(), uuid.New(), 100_00)
	require.NoError(t, err)

	_, err = svc.Fail(context.Background(), p.ID, "insufficient funds")
	require.NoError(t, err)

	records := outboxRepo.Records()
	require.Len(t, records, 1)
	assert.Equal(t, event.TypePaymentFailed, records[0].EventType)
}

func TestPaymentService_ConfirmUnknownPayment(t *testing.T) {
	svc := newPaymentService(testutil.NewMockPaymentRepository(), testutil.NewMockOutboxRepository())

	_, err := svc.Confirm(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainErrors.ErrPaymentNotFound)
}

func TestPaymentService_ProcessReservationCreated(t *testing.T) {
	payments := testutil.NewMockPaymentRepository()
	svc := newPaymentService(payments, testutil.NewMockOutboxRepository())

	evt := reservationCreatedEvent()
	require.NoError(t, svc.ProcessReservationCreated(context.Background(), evt))

	list, err := payments.ListByReservationID(context.Background(), evt.ReservationID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, payment.StatusCreated, list[0].Status)
}

func TestPaymentService_ProcessReservationCreatedDuplicate(t *testing.T) {
	payments := testutil.NewMockPaymentRepository()
	svc := newPaymentService(payments, testutil.NewMockOutboxRepository())

	evt := reservationCreatedEvent()
	require.NoError(t, svc.ProcessReservationCreated(context.Background(), evt))
	// Redelivery of the same event must not error or open a second payment.
	require.NoError(t, svc.ProcessReservationCreated(context.Background(), evt))

	list, err := payments.ListByReservationID(context.Background(), evt.ReservationID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPaymentService_ProcessReservationCreatedInsertRace(t *testing.T) {
	// The existence check misses a payment inserted by a concurrent
	// delivery; the unique constraint reports the conflict instead.
	payments := testutil.NewMockPaymentRepository()
	payments.ExistsByReservationIDFunc = func(ctx context.Context, reservationID uuid.UUID) (bool, error) {
		return false, nil
	}
	payments.CreateFunc = func(ctx context.Context, p *payment.Payment) error {
		return domainErrors.ErrPaymentAlreadyExists
	}
	svc := newPaymentService(payments, testutil.NewMockOutboxRepository())

	assert.NoError(t, svc.ProcessReservationCreated(context.Background(), reservationCreatedEvent()))
}

func TestPaymentService_ProcessReservationCreatedRepositoryError(t *testing.T) {
	payments := testutil.NewMockPaymentRepository()
	payments.CreateFunc = func(ctx context.Context, p *payment.Payment) error {
		return errors.New("connection reset")
	}
	svc := newPaymentService(payments, testutil.NewMockOutboxRepository())

	assert.Error(t, svc.ProcessReservationCreated(context.Background(), reservationCreatedEvent()))
}

func TestPaymentService_HandleReservationCreatedIgnoresOtherEvents(t *testing.T) {
	payments := testutil.NewMockPaymentRepository()
	svc := newPaymentService(payments, testutil.NewMockOutboxRepository())

	err := svc.HandleReservationCreated(context.Background(), event.PaymentConfirmed{
		PaymentID:     uuid.New(),
		ReservationID: uuid.New(),
		Status:        event.OutcomeConfirmed,
	})
	assert.NoError(t, err)
}
