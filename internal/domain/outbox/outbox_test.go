package outbox_test

import (
	"encoding/json"
	"testing"

	"github.com/cassiomorais/booking/internal/domain/event"
	"github.com/cassiomorais/booking/internal/domain/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	reservationID := uuid.New()
	evt := event.PaymentConfirmed{
		PaymentID:     uuid.New(),
		ReservationID: reservationID,
		Status:        event.OutcomeConfirmed,
	}

	rec, err := outbox.NewRecord("Payment", evt.PaymentID, evt)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, "Payment", rec.AggregateType)
	assert.Equal(t, evt.PaymentID, rec.AggregateID)
	assert.Equal(t, event.TypePaymentConfirmed, rec.EventType)
	assert.Equal(t, outbox.StatusNew, rec.Status)
	assert.False(t, rec.CreatedAt.IsZero())

	var decoded event.PaymentConfirmed
	require.NoError(t, json.Unmarshal(rec.Payload, &decoded))
	assert.Equal(t, evt, decoded)
}
