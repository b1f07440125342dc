package controller

import (
	"net/http"

	domainErrors "github.com/cassiomorais/booking/internal/domain/errors"
	"github.com/cassiomorais/booking/internal/service"
	"github.com/google/uuid"
)

type PaymentController struct {
	payments *service.PaymentService
}

func NewPaymentController(payments *service.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

func (c *PaymentController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := c.payments.Create(r.Context(), req.ReservationID, req.AmountCents)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentResponse(p))
}

func (c *PaymentController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := c.payments.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(p))
}

func (c *PaymentController) ListByReservation(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("reservation_id")
	reservationID, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, domainErrors.NewValidationError("reservation_id", "must be a valid UUID"))
		return
	}

	list, err := c.payments.ListByReservation(r.Context(), reservationID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPaymentResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *PaymentController) Confirm(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := c.payments.Confirm(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(p))
}

func (c *PaymentController) Fail(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req FailPaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := c.payments.Fail(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentResponse(p))
}
