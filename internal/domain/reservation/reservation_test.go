package reservation_test

import (
	"testing"
	"time"

	domainErrors "github.com/cassiomorais/booking/internal/domain/errors"
	"github.com/cassiomorais/booking/internal/domain/reservation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReservation(t *testing.T) *reservation.Reservation {
	t.Helper()
	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r, err := reservation.NewReservation(uuid.New(), uuid.New(), from, from.Add(2*time.Hour))
	require.NoError(t, err)
	return r
}

func TestNewReservation(t *testing.T) {
	r := newTestReservation(t)
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, reservation.StatusCreated, r.Status)
}

func TestNewReservation_InvalidPeriod(t *testing.T) {
	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	_, err := reservation.NewReservation(uuid.New(), uuid.New(), from, from.Add(-time.Hour))
	assert.ErrorIs(t, err, domainErrors.ErrInvalidPeriod)

	// Equal bounds are an empty window, also invalid.
	_, err = reservation.NewReservation(uuid.New(), uuid.New(), from, from)
	assert.ErrorIs(t, err, domainErrors.ErrInvalidPeriod)
}

func TestReservation_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    reservation.Status
		to      reservation.Status
		changed bool
	}{
		{"created to paid", reservation.StatusCreated, reservation.StatusPaid, true},
		{"created to payment failed", reservation.StatusCreated, reservation.StatusPaymentFailed, true},
		{"created to cancelled", reservation.StatusCreated, reservation.StatusCancelled, true},
		{"paid to cancelled", reservation.StatusPaid, reservation.StatusCancelled, true},
		{"payment failed to cancelled", reservation.StatusPaymentFailed, reservation.StatusCancelled, true},
		{"paid to payment failed rejected", reservation.StatusPaid, reservation.StatusPaymentFailed, false},
		{"payment failed to paid rejected", reservation.StatusPaymentFailed, reservation.StatusPaid, false},
		{"cancelled to paid rejected", reservation.StatusCancelled, reservation.StatusPaid, false},
		{"cancelled to created rejected", reservation.StatusCancelled, reservation.StatusCreated, false},
		{"same status is a no-op", reservation.StatusPaid, reservation.StatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReservation(t)
			r.Status = tt.from

			changed := r.ApplyStatus(tt.to)

			assert.Equal(t, tt.changed, changed)
			if tt.changed {
				assert.Equal(t, tt.to, r.Status)
			} else {
				assert.Equal(t, tt.from, r.Status)
			}
		})
	}
}

func TestReservation_ApplyStatusIsIdempotent(t *testing.T) {
	r := newTestReservation(t)

	require.True(t, r.ApplyStatus(reservation.StatusPaid))
	// A redelivered outcome must not flip the state again.
	assert.False(t, r.ApplyStatus(reservation.StatusPaid))
	assert.Equal(t, reservation.StatusPaid, r.Status)
}

func TestReservation_Cancel(t *testing.T) {
	r := newTestReservation(t)

	assert.True(t, r.Cancel())
	assert.Equal(t, reservation.StatusCancelled, r.Status)

	// Cancel has no exit and repeating it changes nothing.
	assert.False(t, r.Cancel())
	assert.Equal(t, reservation.StatusCancelled, r.Status)
}
