package consumer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cassiomorais/booking/internal/consumer"
	"github.com/cassiomorais/booking/internal/domain/event"
	"github.com/cassiomorais/booking/internal/kafka"
	"github.com/cassiomorais/booking/internal/observability"
	"github.com/cassiomorais/booking/internal/testutil"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() consumer.Config {
	return consumer.Config{
		Group:          "payment-service-group",
		MaxRetries:     3,
		RetryBackoff:   time.Millisecond,
		HandlerTimeout: time.Second,
	}
}

func newTestConsumer(t *testing.T, fetcher consumer.Fetcher, dlq consumer.DeadLetterer, handler consumer.Handler) *consumer.Consumer {
	t.Helper()
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	return consumer.New(fetcher, dlq, event.NewRegistry(), handler, zerolog.Nop(), metrics, testConfig())
}

func reservationCreatedMessage(t *testing.T) kafka.Message {
	t.Helper()
	evt := event.ReservationCreated{
		ReservationID: uuid.New(),
		UserID:        uuid.New(),
		ResourceID:    uuid.New(),
		From:          time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		To:            time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	payload, err := event.Encode(evt)
	require.NoError(t, err)
	return kafka.Message{
		Topic: event.TopicReservationCreated,
		Key:   []byte(evt.Key()),
		Value: payload,
	}
}

func TestConsumer_ProcessSuccess(t *testing.T) {
	m := reservationCreatedMessage(t)
	fetcher := testutil.NewMockFetcher()
	dlq := &testutil.MockDeadLetterer{}

	var handled event.Event
	c := newTestConsumer(t, fetcher, dlq, func(ctx context.Context, evt event.Event) error {
		handled = evt
		return nil
	})

	c.Process(context.Background(), m)

	require.NotNil(t, handled)
	assert.IsType(t, event.ReservationCreated{}, handled)
	assert.Len(t, fetcher.Committed(), 1)
	assert.Empty(t, dlq.Calls())
}

func TestConsumer_RetriesThenDeadLetters(t *testing.T) {
	m := reservationCreatedMessage(t)
	fetcher := testutil.NewMockFetcher()
	dlq := &testutil.MockDeadLetterer{}

	attempts := 0
	cause := errors.New("downstream unavailable")
	c := newTestConsumer(t, fetcher, dlq, func(ctx context.Context, evt event.Event) error {
		attempts++
		return cause
	})

	c.Process(context.Background(), m)

	// The retry budget is the total attempt count, not extra attempts.
	assert.Equal(t, 3, attempts)

	calls := dlq.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "payment-service-group", calls[0].Group)
	assert.Equal(t, 3, calls[0].Attempts)
	assert.ErrorIs(t, calls[0].LastErr, cause)

	// Dead-lettered deliveries are committed so the partition moves on.
	assert.Len(t, fetcher.Committed(), 1)
}

func TestConsumer_TransientFailureRecovers(t *testing.T) {
	m := reservationCreatedMessage(t)
	fetcher := testutil.NewMockFetcher()
	dlq := &testutil.MockDeadLetterer{}

	attempts := 0
	c := newTestConsumer(t, fetcher, dlq, func(ctx context.Context, evt event.Event) error {
		attempts++
		if attempts < 3 {
			return errors.New("timeout")
		}
		return nil
	})

	c.Process(context.Background(), m)

	assert.Equal(t, 3, attempts)
	assert.Empty(t, dlq.Calls())
	assert.Len(t, fetcher.Committed(), 1)
}

func TestConsumer_UndecodableSkipsRetries(t *testing.T) {
	m := kafka.Message{
		Topic: event.TopicPaymentConfirmed,
		Key:   []byte("k"),
		Value: []byte(`not json`),
	}
	fetcher := testutil.NewMockFetcher()
	dlq := &testutil.MockDeadLetterer{}

	handled := false
	c := newTestConsumer(t, fetcher, dlq, func(ctx context.Context, evt event.Event) error {
		handled = true
		return nil
	})

	c.Process(context.Background(), m)

	assert.False(t, handled)
	calls := dlq.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 0, calls[0].Attempts)
	assert.Len(t, fetcher.Committed(), 1)
}

func TestConsumer_UnknownTopicDeadLetters(t *testing.T) {
	m := kafka.Message{Topic: "some-other-topic", Value: []byte(`{}`)}
	fetcher := testutil.NewMockFetcher()
	dlq := &testutil.MockDeadLetterer{}

	c := newTestConsumer(t, fetcher, dlq, func(ctx context.Context, evt event.Event) error {
		return nil
	})

	c.Process(context.Background(), m)

	assert.Len(t, dlq.Calls(), 1)
	assert.Len(t, fetcher.Committed(), 1)
}

func TestConsumer_DeadLetterFailureLeavesUncommitted(t *testing.T) {
	m := reservationCreatedMessage(t)
	fetcher := testutil.NewMockFetcher()
	dlq := &testutil.MockDeadLetterer{ErrOut: errors.New("dlt publish failed")}

	c := newTestConsumer(t, fetcher, dlq, func(ctx context.Context, evt event.Event) error {
		return errors.New("permanent failure")
	})

	c.Process(context.Background(), m)

	// The delivery must come back so the dead-letter publish can be retried.
	assert.Empty(t, fetcher.Committed())
}

func TestConsumer_RunStopsOnCancel(t *testing.T) {
	fetcher := testutil.NewMockFetcher(reservationCreatedMessage(t))
	dlq := &testutil.MockDeadLetterer{}

	c := newTestConsumer(t, fetcher, dlq, func(ctx context.Context, evt event.Event) error {
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(fetcher.Committed()) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
}
