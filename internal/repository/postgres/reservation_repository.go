package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/cassiomorais/booking/internal/domain/errors"
	"github.com/cassiomorais/booking/internal/domain/reservation"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

func (r *ReservationRepository) Create(ctx context.Context, res *reservation.Reservation) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO reservations (id, user_id, resource_id, start_time, end_time, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		res.ID, res.UserID, res.ResourceID, res.StartTime, res.EndTime, string(res.Status), res.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	res := &reservation.Reservation{}
	var status string
	err := r.db(ctx).QueryRow(ctx,
		`SELECT id, user_id, resource_id, start_time, end_time, status, created_at
		 FROM reservations WHERE id = $1`, id,
	).Scan(&res.ID, &res.UserID, &res.ResourceID, &res.StartTime, &res.EndTime, &status, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrReservationNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	res.Status = reservation.Status(status)
	return res, nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, res *reservation.Reservation) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE reservations SET status = $1 WHERE id = $2`,
		string(res.Status), res.ID,
	)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrReservationNotFound
	}
	return nil
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*reservation.Reservation, error) {
	return r.list(ctx,
		`SELECT id, user_id, resource_id, start_time, end_time, status, created_at
		 FROM reservations WHERE user_id = $1 ORDER BY created_at ASC`, userID)
}

func (r *ReservationRepository) List(ctx context.Context) ([]*reservation.Reservation, error) {
	return r.list(ctx,
		`SELECT id, user_id, resource_id, start_time, end_time, status, created_at
		 FROM reservations ORDER BY created_at ASC`)
}

func (r *ReservationRepository) list(ctx context.Context, query string, args ...any) ([]*reservation.Reservation, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var result []*reservation.Reservation
	for rows.Next() {
		res := &reservation.Reservation{}
		var status string
		if err := rows.Scan(&res.ID, &res.UserID, &res.ResourceID, &res.StartTime, &res.EndTime, &status, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		res.Status = reservation.Status(status)
		result = append(result, res)
	}
	return result, rows.Err()
}
