package postgres

import (
	"context"
	"fmt"

	"github.com/cassiomorais/booking/internal/domain/outbox"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OutboxRepository struct {
	pool *pgxpool.Pool
}

func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

func (r *OutboxRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

func (r *OutboxRepository) Insert(ctx context.Context, rec *outbox.Record) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.AggregateType, rec.AggregateID, rec.EventType, rec.Payload,
		string(rec.Status), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox record: %w", err)
	}
	return nil
}

// ListNew selects the oldest NEW records. FOR UPDATE SKIP LOCKED lets
// concurrent relay instances work disjoint batches instead of publishing the
// same rows twice.
func (r *OutboxRepository) ListNew(ctx context.Context, limit int) ([]*outbox.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, aggregate_type, aggregate_id, event_type, payload, status, created_at
		 FROM outbox WHERE status = 'NEW'
		 ORDER BY created_at ASC
		 LIMIT $1
		 FOR UPDATE SKIP LOCKED`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list new outbox records: %w", err)
	}
	defer rows.Close()

	var records []*outbox.Record
	for rows.Next() {
		rec := &outbox.Record{}
		var status string
		if err := rows.Scan(&rec.ID, &rec.AggregateType, &rec.AggregateID, &rec.EventType, &rec.Payload, &status, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox record: %w", err)
		}
		rec.Status = outbox.Status(status)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *OutboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	return r.flip(ctx, id, outbox.StatusSent)
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return r.flip(ctx, id, outbox.StatusFailed)
}

// flip moves a record out of NEW. The status guard keeps SENT and FAILED
// terminal even if two relays race on the same row.
func (r *OutboxRepository) flip(ctx context.Context, id uuid.UUID, to outbox.Status) error {
	_, err := r.db(ctx).Exec(ctx,
		`UPDATE outbox SET status = $1 WHERE id = $2 AND status = 'NEW'`,
		string(to), id,
	)
	if err != nil {
		return fmt.Errorf("mark outbox %s: %w", to, err)
	}
	return nil
}
