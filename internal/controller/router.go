package controller

import (
	"time"

	"github.com/cassiomorais/booking/internal/config"
	customMW "github.com/cassiomorais/booking/internal/middleware"
	"github.com/cassiomorais/booking/internal/observability"
	"github.com/cassiomorais/booking/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Pool               *pgxpool.Pool
	UserService        *service.UserService
	ReservationService *service.ReservationService
	PaymentService     *service.PaymentService
	Metrics            *observability.Metrics
	CORSConfig         config.CORSConfig
	ServiceName        string
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))
	r.Use(customMW.Tracing(deps.ServiceName))

	healthH := NewHealthController(deps.Pool)
	userH := NewUserController(deps.UserService)
	reservationH := NewReservationController(deps.ReservationService)
	paymentH := NewPaymentController(deps.PaymentService)

	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Users
		r.Post("/users", userH.Create)
		r.Get("/users", userH.List)
		r.Get("/users/{id}", userH.Get)
		r.Delete("/users/{id}", userH.Delete)

		// Reservations
		r.Post("/reservations", reservationH.Create)
		r.Get("/reservations", reservationH.List)
		r.Get("/reservations/{id}", reservationH.Get)
		r.Post("/reservations/{id}/cancel", reservationH.Cancel)

		// Payments
		r.Post("/payments", paymentH.Create)
		r.Get("/payments", paymentH.ListByReservation)
		r.Get("/payments/{id}", paymentH.Get)
		r.Post("/payments/{id}/confirm", paymentH.Confirm)
		r.Post("/payments/{id}/fail", paymentH.Fail)
	})

	return r
}
