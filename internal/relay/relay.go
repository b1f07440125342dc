package relay

import (
	"context"
	"time"

	"github.com/cassiomorais/booking/internal/domain/event"
	"github.com/cassiomorais/booking/internal/domain/outbox"
	"github.com/cassiomorais/booking/internal/observability"
	"github.com/rs/zerolog"
)

// TransactionManager runs fn inside one database transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Publisher sends one message to the broker.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// Relay periodically drains NEW outbox records to the broker. Publishing
// happens before the status flip commits, so a crash in between causes a
// re-publish on the next tick. The pipeline is at-least-once toward the
// broker, and duplicate suppression lives in the consumers.
type Relay struct {
	tx        TransactionManager
	outbox    outbox.Repository
	publisher Publisher
	registry  *event.Registry
	logger    zerolog.Logger
	metrics   *observability.Metrics
	interval  time.Duration
	batchSize int
}

func New(
	tx TransactionManager,
	outboxRepo outbox.Repository,
	publisher Publisher,
	registry *event.Registry,
	logger zerolog.Logger,
	metrics *observability.Metrics,
	interval time.Duration,
	batchSize int,
) *Relay {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Relay{
		tx:        tx,
		outbox:    outboxRepo,
		publisher: publisher,
		registry:  registry,
		logger:    logger.With().Str("component", "outbox-relay").Logger(),
		metrics:   metrics,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run ticks until ctx is cancelled. A failed tick is logged and the loop
// keeps going; rows left NEW are picked up next time.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := r.Tick(ctx); err != nil {
			r.logger.Error().Err(err).Msg("relay tick failed")
		}
	}
}

// Tick runs one relay pass. The candidate scan and the status flips share a
// single transaction: the selected rows stay locked until the flips commit,
// which bounds duplicate publishes under concurrent relay instances. An
// empty scan is a no-op.
func (r *Relay) Tick(ctx context.Context) error {
	start := time.Now()
	defer func() {
		r.metrics.RelayTickDuration.Observe(time.Since(start).Seconds())
	}()

	return r.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		records, err := r.outbox.ListNew(txCtx, r.batchSize)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}

		r.logger.Debug().Int("count", len(records)).Msg("publishing outbox records")

		for _, rec := range records {
			r.publishOne(ctx, txCtx, rec)
		}
		return nil
	})
}

// publishOne publishes a single record and flips its status. A failure on
// one row never blocks the rows behind it.
func (r *Relay) publishOne(ctx, txCtx context.Context, rec *outbox.Record) {
	// Decoding through the registry validates the payload and catches
	// unknown event types before anything reaches the broker. Poison rows
	// go straight to FAILED; the relay never retries them.
	evt, err := r.registry.Decode(rec.EventType, rec.Payload)
	if err != nil {
		r.logger.Error().Err(err).
			Str("outbox_id", rec.ID.String()).
			Str("event_type", rec.EventType).
			Msg("undecodable outbox record, marking FAILED")
		r.markFailed(txCtx, rec, "decode")
		return
	}

	topic, err := event.TopicFor(rec.EventType)
	if err != nil {
		r.logger.Error().Err(err).Str("outbox_id", rec.ID.String()).Msg("no topic for outbox record, marking FAILED")
		r.markFailed(txCtx, rec, "topic")
		return
	}

	if err := r.publisher.Publish(ctx, topic, evt.Key(), rec.Payload); err != nil {
		r.logger.Error().Err(err).
			Str("outbox_id", rec.ID.String()).
			Str("topic", topic).
			Msg("publish failed, marking FAILED")
		r.markFailed(txCtx, rec, "publish")
		return
	}

	if err := r.outbox.MarkSent(txCtx, rec.ID); err != nil {
		// The message is already out; the row stays NEW and will be
		// published again next tick. Accepted at-least-once window.
		r.logger.Error().Err(err).Str("outbox_id", rec.ID.String()).Msg("mark SENT failed")
		return
	}

	r.metrics.OutboxPublished.WithLabelValues(rec.EventType).Inc()
	r.logger.Info().
		Str("outbox_id", rec.ID.String()).
		Str("event_type", rec.EventType).
		Str("aggregate_id", rec.AggregateID.String()).
		Msg("outbox record published")
}

func (r *Relay) markFailed(txCtx context.Context, rec *outbox.Record, reason string) {
	if err := r.outbox.MarkFailed(txCtx, rec.ID); err != nil {
		r.logger.Error().Err(err).Str("outbox_id", rec.ID.String()).Msg("mark FAILED failed")
		return
	}
	r.metrics.OutboxFailed.WithLabelValues(rec.EventType, reason).Inc()
}
