package controller

import (
	"net/http"

	domainErrors "github.com/cassiomorais/booking/internal/domain/errors"
	"github.com/cassiomorais/booking/internal/domain/reservation"
	"github.com/cassiomorais/booking/internal/service"
	"github.com/google/uuid"
)

type ReservationController struct {
	reservations *service.ReservationService
}

func NewReservationController(reservations *service.ReservationService) *ReservationController {
	return &ReservationController{reservations: reservations}
}

func (c *ReservationController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := c.reservations.Create(r.Context(), req.UserID, req.ResourceID, req.From, req.To)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReservationResponse(res))
}

func (c *ReservationController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := c.reservations.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res))
}

func (c *ReservationController) List(w http.ResponseWriter, r *http.Request) {
	list, err := c.listFor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]ReservationResponse, 0, len(list))
	for _, res := range list {
		out = append(out, toReservationResponse(res))
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *ReservationController) listFor(r *http.Request) ([]*reservation.Reservation, error) {
	rawUser := r.URL.Query().Get("user_id")
	if rawUser == "" {
		return c.reservations.List(r.Context())
	}
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return nil, domainErrors.NewValidationError("user_id", "must be a valid UUID")
	}
	return c.reservations.ListByUser(r.Context(), userID)
}

func (c *ReservationController) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := c.reservations.Cancel(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationResponse(res))
}
