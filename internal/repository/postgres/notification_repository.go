package postgres

import (
	"context"
	"fmt"

	domainErrors "github.com/cassiomorais/booking/internal/domain/errors"
	"github.com/cassiomorais/booking/internal/domain/notification"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

func (r *NotificationRepository) Insert(ctx context.Context, l *notification.Log) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO notification_logs (id, payment_id, event_type, sent_at)
		 VALUES ($1, $2, $3, $4)`,
		l.ID, l.PaymentID, l.EventType, l.SentAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domainErrors.ErrAlreadyProcessed
		}
		return fmt.Errorf("insert notification log: %w", err)
	}
	return nil
}

func (r *NotificationRepository) Exists(ctx context.Context, paymentID uuid.UUID, eventType string) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM notification_logs WHERE payment_id = $1 AND event_type = $2)`,
		paymentID, eventType,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("notification log exists: %w", err)
	}
	return exists, nil
}
