package web

import (
	"net/http"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *handler) createReservation(c *gin.Context) {
	var in service.CreateReservationInput
	if !bind(c, &in) {
		return
	}

	res, err := h.svc.Reservations.CreateReservation(c.Request.Context(), principal(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *handler) listReservations(c *gin.Context) {
	roomID, ok := int64Query(c, "room_id")
	if !ok {
		return
	}
	guestID, ok := int64Query(c, "guest_id")
	if !ok {
		return
	}

	filter := model.ReservationFilter{
		RoomID:  roomID,
		GuestID: guestID,
		Status:  model.ReservationStatus(c.Query("status")),
	}

	reservations, err := h.svc.Reservations.ListReservations(c.Request.Context(), principal(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	if reservations == nil {
		reservations = []*model.Reservation{}
	}
	c.JSON(http.StatusOK, gin.H{"reservations": reservations})
}

func (h *handler) getReservation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	res, err := h.svc.Reservations.GetReservation(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) confirmReservation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.ConfirmReservationInput
	if !bind(c, &in) {
		return
	}

	res, err := h.svc.Reservations.ConfirmReservation(c.Request.Context(), principal(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) cancelReservation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req cancelRequest
	if !bind(c, &req) {
		return
	}

	res, refund, err := h.svc.Reservations.CancelReservation(c.Request.Context(), principal(c), id, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": res, "refund_amount": refund})
}

func (h *handler) convertReservation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	booking, res, err := h.svc.Reservations.ConvertToBooking(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking, "reservation": res})
}

func (h *handler) deleteReservation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.svc.Reservations.DeleteReservation(c.Request.Context(), principal(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
