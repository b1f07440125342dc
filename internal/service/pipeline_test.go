package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/cassiomorais/booking/internal/consumer"
	"github.com/cassiomorais/booking/internal/domain/event"
	"github.com/cassiomorais/booking/internal/domain/outbox"
	"github.com/cassiomorais/booking/internal/domain/payment"
	"github.com/cassiomorais/booking/internal/domain/reservation"
	"github.com/cassiomorais/booking/internal/kafka"
	"github.com/cassiomorais/booking/internal/observability"
	"github.com/cassiomorais/booking/internal/relay"
	"github.com/cassiomorais/booking/internal/service"
	"github.com/cassiomorais/booking/internal/testutil"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeline wires the full choreography in memory: services writing through
// the outbox, a relay draining it announced into captured messages, and
// consumers applying those messages back into the services.
type pipeline struct {
	reservations *testutil.MockReservationRepository
	payments     *testutil.MockPaymentRepository
	logs         *testutil.MockNotificationRepository
	outboxRepo   *testutil.MockOutboxRepository
	publisher    *testutil.MockPublisher

	reservationSvc *service.ReservationService
	paymentSvc     *service.PaymentService

	relay                *relay.Relay
	paymentConsumer      *consumer.Consumer
	reservationConsumer  *consumer.Consumer
	notificationConsumer *consumer.Consumer
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	tx := &testutil.MockTransactionManager{}
	logger := zerolog.Nop()

	p := &pipeline{
		reservations: testutil.NewMockReservationRepository(),
		payments:     testutil.NewMockPaymentRepository(),
		logs:         testutil.NewMockNotificationRepository(),
		outboxRepo:   testutil.NewMockOutboxRepository(),
		publisher:    &testutil.MockPublisher{},
	}

	p.reservationSvc = service.NewReservationService(p.reservations, p.outboxRepo, tx, logger)
	p.paymentSvc = service.NewPaymentService(p.payments, p.outboxRepo, tx, logger)
	notificationSvc := service.NewNotificationService(p.logs, tx, logger)

	registry := event.NewRegistry()
	p.relay = relay.New(tx, p.outboxRepo, p.publisher, registry, logger,
		observability.NewMetrics("pipeline", prometheus.NewRegistry()), 0, 0)

	cfg := consumer.Config{MaxRetries: 1, RetryBackoff: time.Millisecond, HandlerTimeout: time.Second}
	newC := func(group string, h consumer.Handler) *consumer.Consumer {
		cfg := cfg
		cfg.Group = group
		return consumer.New(testutil.NewMockFetcher(), &testutil.MockDeadLetterer{}, registry, h, logger,
			observability.NewMetrics(group, prometheus.NewRegistry()), cfg)
	}
	p.paymentConsumer = newC("payment-service-group", p.paymentSvc.HandleReservationCreated)
	p.reservationConsumer = newC("reservation-service-group", p.reservationSvc.HandlePaymentEvent)
	p.notificationConsumer = newC("notification-service-group", notificationSvc.HandlePaymentEvent)

	return p
}

// drain runs one relay tick and returns the messages published by it.
func (p *pipeline) drain(t *testing.T) []kafka.Message {
	t.Helper()
	before := len(p.publisher.Published())
	require.NoError(t, p.relay.Tick(context.Background()))

	var out []kafka.Message
	for _, m := range p.publisher.Published()[before:] {
		out = append(out, kafka.Message{Topic: m.Topic, Key: []byte(m.Key), Value: m.Value})
	}
	return out
}

func TestPipeline_ReservationToPaidEndToEnd(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	res, err := p.reservationSvc.Create(ctx, uuid.New(), uuid.New(), from, from.Add(2*time.Hour))
	require.NoError(t, err)
	require.Equal(t, reservation.StatusCreated, res.Status)

	// One NEW outbox row for the creation.
	records := p.outboxRepo.Records()
	require.Len(t, records, 1)
	assert.Equal(t, event.TypeReservationCreated, records[0].EventType)
	assert.Equal(t, outbox.StatusNew, records[0].Status)

	// Relay drains it onto the reservation-created topic.
	msgs := p.drain(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, event.TopicReservationCreated, msgs[0].Topic)
	assert.Equal(t, res.ID.String(), string(msgs[0].Key))
	assert.Equal(t, outbox.StatusSent, p.outboxRepo.Records()[0].Status)

	// The payment consumer opens a payment keyed to the reservation.
	p.paymentConsumer.Process(ctx, msgs[0])
	opened, err := p.payments.ListByReservationID(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, opened, 1)
	assert.Equal(t, payment.StatusCreated, opened[0].Status)

	// Redelivering the same event must not open a second payment.
	p.paymentConsumer.Process(ctx, msgs[0])
	opened, err = p.payments.ListByReservationID(ctx, res.ID)
	require.NoError(t, err)
	assert.Len(t, opened, 1)

	// Confirming the payment queues PaymentConfirmed; the relay drains it.
	_, err = p.paymentSvc.Confirm(ctx, opened[0].ID)
	require.NoError(t, err)
	msgs = p.drain(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, event.TopicPaymentConfirmed, msgs[0].Topic)

	// The reservation consumer flips the reservation to PAID.
	p.reservationConsumer.Process(ctx, msgs[0])
	got, err := p.reservations.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusPaid, got.Status)

	// The notification consumer records exactly one ledger entry, even
	// after a redelivery.
	p.notificationConsumer.Process(ctx, msgs[0])
	p.notificationConsumer.Process(ctx, msgs[0])
	assert.Equal(t, 1, p.logs.Count())

	// Both outbox rows ended up SENT.
	for _, rec := range p.outboxRepo.Records() {
		assert.Equal(t, outbox.StatusSent, rec.Status)
	}
}

func TestPipeline_PaymentFailedMarksReservation(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	res, err := p.reservationSvc.Create(ctx, uuid.New(), uuid.New(), from, from.Add(time.Hour))
	require.NoError(t, err)

	msgs := p.drain(t)
	require.Len(t, msgs, 1)
	p.paymentConsumer.Process(ctx, msgs[0])

	opened, err := p.payments.ListByReservationID(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, opened, 1)

	_, err = p.paymentSvc.Fail(ctx, opened[0].ID, "card declined")
	require.NoError(t, err)

	msgs = p.drain(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, event.TopicPaymentFailed, msgs[0].Topic)

	p.reservationConsumer.Process(ctx, msgs[0])
	got, err := p.reservations.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusPaymentFailed, got.Status)
}
