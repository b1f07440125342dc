package outbox

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Insert writes an outbox record. It joins the transaction carried in
	// ctx, so the record commits or aborts together with the aggregate
	// mutation that produced it.
	Insert(ctx context.Context, rec *Record) error

	// ListNew returns NEW records in insertion order, up to limit. Inside a
	// transaction the selected rows are locked until the status flip
	// commits, which bounds duplicate publishes across concurrent relays.
	ListNew(ctx context.Context, limit int) ([]*Record, error)

	// MarkSent flips a record to SENT.
	MarkSent(ctx context.Context, id uuid.UUID) error

	// MarkFailed flips a record to FAILED. FAILED is terminal; the relay
	// never picks the record up again.
	MarkFailed(ctx context.Context, id uuid.UUID) error
}
