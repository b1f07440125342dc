package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/cassiomorais/booking/internal/domain/errors"
	"github.com/cassiomorais/booking/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// Create inserts the payment. payments.reservation_id carries a unique
// constraint, so the duplicate created by two concurrent deliveries of the
// same ReservationCreated event loses the race here, not in application code.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payments (id, reservation_id, amount_cents, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.ReservationID, p.AmountCents, string(p.Status), p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrPaymentAlreadyExists
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	p := &payment.Payment{}
	var status string
	err := r.db(ctx).QueryRow(ctx,
		`SELECT id, reservation_id, amount_cents, status, created_at
		 FROM payments WHERE id = $1`, id,
	).Scan(&p.ID, &p.ReservationID, &p.AmountCents, &status, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	p.Status = payment.Status(status)
	return p, nil
}

func (r *PaymentRepository) ExistsByReservationID(ctx context.Context, reservationID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE reservation_id = $1)`, reservationID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("payment exists by reservation: %w", err)
	}
	return exists, nil
}

func (r *PaymentRepository) ListByReservationID(ctx context.Context, reservationID uuid.UUID) ([]*payment.Payment, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, reservation_id, amount_cents, status, created_at
		 FROM payments WHERE reservation_id = $1 ORDER BY created_at ASC`, reservationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments by reservation: %w", err)
	}
	defer rows.Close()

	var result []*payment.Payment
	for rows.Next() {
		p := &payment.Payment{}
		var status string
		if err := rows.Scan(&p.ID, &p.ReservationID, &p.AmountCents, &status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Status = payment.Status(status)
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, p *payment.Payment) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE payments SET status = $1 WHERE id = $2`,
		string(p.Status), p.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrPaymentNotFound
	}
	return nil
}
