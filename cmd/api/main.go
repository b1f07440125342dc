package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cassiomorais/booking/internal/bootstrap"
	"github.com/cassiomorais/booking/internal/controller"
	"github.com/cassiomorais/booking/internal/repository/postgres"
	"github.com/cassiomorais/booking/internal/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "booking-api", "booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	userRepo := postgres.NewUserRepository(app.Pool)
	reservationRepo := postgres.NewReservationRepository(app.Pool)
	paymentRepo := postgres.NewPaymentRepository(app.Pool)
	outboxRepo := postgres.NewOutboxRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Services ---
	userService := service.NewUserService(userRepo, app.Logger)
	reservationService := service.NewReservationService(reservationRepo, outboxRepo, txManager, app.Logger)
	paymentService := service.NewPaymentService(paymentRepo, outboxRepo, txManager, app.Logger)

	router := controller.NewRouter(controller.RouterDeps{
		Pool:               app.Pool,
		UserService:        userService,
		ReservationService: reservationService,
		PaymentService:     paymentService,
		Metrics:            app.Metrics,
		CORSConfig:         app.Config.Server.CORS,
		ServiceName:        "booking-api",
	})

	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
	}

	go func() {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info().Msg("Shutting down HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error().Err(err).Msg("Server shutdown error")
	}
	app.Logger.Info().Msg("Server exited")
}
