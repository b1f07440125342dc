package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cassiomorais/booking/internal/bootstrap"
	"github.com/cassiomorais/booking/internal/consumer"
	"github.com/cassiomorais/booking/internal/domain/event"
	"github.com/cassiomorais/booking/internal/kafka"
	"github.com/cassiomorais/booking/internal/relay"
	"github.com/cassiomorais/booking/internal/repository/postgres"
	"github.com/cassiomorais/booking/internal/service"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "booking-worker", "booking_worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	reservationRepo := postgres.NewReservationRepository(app.Pool)
	paymentRepo := postgres.NewPaymentRepository(app.Pool)
	notificationRepo := postgres.NewNotificationRepository(app.Pool)
	outboxRepo := postgres.NewOutboxRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Services ---
	reservationService := service.NewReservationService(reservationRepo, outboxRepo, txManager, app.Logger)
	paymentService := service.NewPaymentService(paymentRepo, outboxRepo, txManager, app.Logger)
	notificationService := service.NewNotificationService(notificationRepo, txManager, app.Logger)

	// --- Event pipeline ---
	registry := event.NewRegistry()
	producer := kafka.NewProducer(&app.Config.Kafka)
	defer producer.Close()
	dlq := kafka.NewDeadLetterPublisher(producer)

	outboxRelay := relay.New(
		txManager, outboxRepo, producer, registry,
		app.Logger, app.Metrics,
		app.Config.Relay.PollInterval, app.Config.Relay.BatchSize,
	)

	consumerCfg := app.Config.Consumer
	subscriptions := []struct {
		topic   string
		group   string
		handler consumer.Handler
	}{
		{event.TopicReservationCreated, consumerCfg.PaymentGroup, paymentService.HandleReservationCreated},
		{event.TopicPaymentConfirmed, consumerCfg.ReservationGroup, reservationService.HandlePaymentEvent},
		{event.TopicPaymentFailed, consumerCfg.ReservationGroup, reservationService.HandlePaymentEvent},
		{event.TopicPaymentConfirmed, consumerCfg.NotificationGroup, notificationService.HandlePaymentEvent},
		{event.TopicPaymentFailed, consumerCfg.NotificationGroup, notificationService.HandlePaymentEvent},
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return outboxRelay.Run(gCtx)
	})

	for _, sub := range subscriptions {
		reader := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers: app.Config.Kafka.Brokers,
			Topic:   sub.topic,
			GroupID: sub.group,
		})
		defer reader.Close()

		c := consumer.New(reader, dlq, registry, sub.handler, app.Logger, app.Metrics, consumer.Config{
			Group:          sub.group,
			MaxRetries:     consumerCfg.MaxRetries,
			RetryBackoff:   consumerCfg.RetryBackoff,
			HandlerTimeout: consumerCfg.HandlerTimeout,
		})
		g.Go(func() error {
			return c.Run(gCtx)
		})

		app.Logger.Info().Str("topic", sub.topic).Str("group", sub.group).Msg("Consumer started")
	}

	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down worker...")
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Worker error")
	}
	app.Logger.Info().Msg("Worker exited")
}
