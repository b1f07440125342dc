package consumer

import (
	"context"
	"time"

	"github.com/cassiomorais/booking/internal/domain/event"
	"github.com/cassiomorais/booking/internal/kafka"
	"github.com/cassiomorais/booking/internal/observability"
	"github.com/cassiomorais/booking/pkg/retry"
	"github.com/rs/zerolog"
)

// Fetcher yields broker messages and acknowledges them. Commit must only be
// called once the message's fate is settled (handled or dead-lettered).
type Fetcher interface {
	Fetch(ctx context.Context) (kafka.Message, error)
	Commit(ctx context.Context, m kafka.Message) error
}

// DeadLetterer redirects a permanently failing delivery.
type DeadLetterer interface {
	Publish(ctx context.Context, group string, m kafka.Message, attempts int, lastErr error) error
}

// Handler applies the effect of one decoded event. It must be idempotent:
// the broker is at-least-once and the relay can double-publish, so the same
// logical event will arrive more than once.
type Handler func(ctx context.Context, evt event.Event) error

// Config tunes the retry and timeout behavior of one consumer.
type Config struct {
	Group          string
	MaxRetries     int           // total handler attempts per delivery
	RetryBackoff   time.Duration // fixed delay between attempts
	HandlerTimeout time.Duration // per-attempt budget
}

// Consumer runs one (topic, group) subscription: fetch, decode through the
// registry, hand to the handler, commit. Failures are retried locally a
// bounded number of times and then dead-lettered so one bad message never
// blocks the partition behind it.
type Consumer struct {
	fetcher  Fetcher
	dlq      DeadLetterer
	registry *event.Registry
	handler  Handler
	logger   zerolog.Logger
	metrics  *observability.Metrics
	cfg      Config
}

func New(
	fetcher Fetcher,
	dlq DeadLetterer,
	registry *event.Registry,
	handler Handler,
	logger zerolog.Logger,
	metrics *observability.Metrics,
	cfg Config,
) *Consumer {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = 30 * time.Second
	}
	return &Consumer{
		fetcher:  fetcher,
		dlq:      dlq,
		registry: registry,
		handler:  handler,
		logger:   logger.With().Str("component", "consumer").Str("group", cfg.Group).Logger(),
		metrics:  metrics,
		cfg:      cfg,
	}
}

// Run fetches until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		m, err := c.fetcher.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error().Err(err).Msg("fetch failed")
			time.Sleep(200 * time.Millisecond)
			continue
		}
		c.Process(ctx, m)
	}
}

// Process settles one delivery. Every exit path is contained: the message is
// committed after success or after dead-lettering, and left uncommitted only
// when the dead-letter publish itself failed, so redelivery can try again.
func (c *Consumer) Process(ctx context.Context, m kafka.Message) {
	evt, err := c.decode(m)
	if err != nil {
		// Undecodable messages are permanent failures. They skip the retry
		// budget, which is reserved for transient faults, and go straight
		// to the dead-letter topic.
		c.logger.Error().Err(err).Str("topic", m.Topic).Msg("undecodable message, dead-lettering")
		c.deadLetterAndCommit(ctx, m, 0, err)
		return
	}

	err = retry.Do(ctx, retry.Config{
		MaxAttempts: uint(c.cfg.MaxRetries),
		Delay:       c.cfg.RetryBackoff,
		Fixed:       true,
		OnRetry: func(n uint, err error) {
			c.metrics.ConsumerRetries.WithLabelValues(m.Topic).Inc()
			c.logger.Warn().Err(err).Uint("attempt", n+1).Str("topic", m.Topic).Msg("handler failed, retrying")
		},
	}, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.HandlerTimeout)
		defer cancel()
		return c.handler(attemptCtx, evt)
	})

	if err != nil {
		c.logger.Error().Err(err).
			Str("topic", m.Topic).
			Str("key", string(m.Key)).
			Int("attempts", c.cfg.MaxRetries).
			Msg("handler exhausted retries, dead-lettering")
		c.deadLetterAndCommit(ctx, m, c.cfg.MaxRetries, err)
		return
	}

	c.metrics.ConsumerProcessed.WithLabelValues(m.Topic, "ok").Inc()
	if err := c.fetcher.Commit(ctx, m); err != nil {
		c.logger.Error().Err(err).Str("topic", m.Topic).Msg("commit failed")
	}
}

func (c *Consumer) decode(m kafka.Message) (event.Event, error) {
	eventType, err := event.TypeForTopic(m.Topic)
	if err != nil {
		return nil, err
	}
	return c.registry.Decode(eventType, m.Value)
}

func (c *Consumer) deadLetterAndCommit(ctx context.Context, m kafka.Message, attempts int, cause error) {
	if err := c.dlq.Publish(ctx, c.cfg.Group, m, attempts, cause); err != nil {
		// Leave the message uncommitted; the delivery comes back and the
		// dead-letter publish gets another chance.
		c.logger.Error().Err(err).Str("topic", m.Topic).Msg("dead-letter publish failed")
		return
	}
	c.metrics.ConsumerDeadLettered.WithLabelValues(m.Topic).Inc()
	c.metrics.ConsumerProcessed.WithLabelValues(m.Topic, "dead_lettered").Inc()
	if err := c.fetcher.Commit(ctx, m); err != nil {
		c.logger.Error().Err(err).Str("topic", m.Topic).Msg("commit after dead-letter failed")
	}
}
