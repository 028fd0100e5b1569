package web

import (
	"context"
	"net/http"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/service"
	"github.com/gin-gonic/gin"
)

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *handler) createBooking(c *gin.Context) {
	var in service.CreateBookingInput
	if !bind(c, &in) {
		return
	}

	booking, err := h.svc.Bookings.CreateBooking(c.Request.Context(), principal(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *handler) listBookings(c *gin.Context) {
	roomID, ok := int64Query(c, "room_id")
	if !ok {
		return
	}
	guestID, ok := int64Query(c, "guest_id")
	if !ok {
		return
	}

	filter := model.BookingFilter{
		RoomID:  roomID,
		GuestID: guestID,
		Status:  model.BookingStatus(c.Query("status")),
	}

	bookings, err := h.svc.Bookings.ListBookings(c.Request.Context(), principal(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func (h *handler) getBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	booking, err := h.svc.Bookings.GetBooking(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *handler) updateBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.UpdateBookingInput
	if !bind(c, &in) {
		return
	}

	booking, err := h.svc.Bookings.UpdateBooking(c.Request.Context(), principal(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *handler) cancelBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req cancelRequest
	if !bind(c, &req) {
		return
	}

	booking, refund, err := h.svc.Bookings.CancelBooking(c.Request.Context(), principal(c), id, req.Reason)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking, "refund_amount": refund})
}

type bookingAction func(ctx context.Context, p model.Principal, id int64) (*model.Booking, error)

// bookingTransition обёртка для действий персонала без тела запроса
func (h *handler) bookingTransition(action bookingAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c)
		if !ok {
			return
		}

		booking, err := action(c.Request.Context(), principal(c), id)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, booking)
	}
}
