package web

import (
	"net/http"
	"strconv"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/service"
	"github.com/gin-gonic/gin"
)

func (h *handler) listRooms(c *gin.Context) {
	filter := model.RoomFilter{
		Type:       model.RoomType(c.Query("type")),
		Status:     model.RoomStatus(c.Query("status")),
		OnlyActive: c.Query("active") == "true",
	}
	if raw := c.Query("min_capacity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "invalid min_capacity")
			return
		}
		filter.MinCapacity = n
	}

	rooms, err := h.svc.Rooms.ListRooms(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *handler) getRoom(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	room, err := h.svc.Rooms.GetRoom(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// roomAvailability занятость номера на интервал: available=true, если claims пуст
func (h *handler) roomAvailability(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	checkIn, ok := dateQuery(c, "check_in")
	if !ok {
		return
	}
	checkOut, ok := dateQuery(c, "check_out")
	if !ok {
		return
	}

	claims, err := h.svc.Rooms.CheckAvailability(c.Request.Context(), id, checkIn, checkOut)
	if err != nil {
		h.fail(c, err)
		return
	}
	if claims == nil {
		claims = []model.OccupancyClaim{}
	}
	c.JSON(http.StatusOK, gin.H{
		"room_id":   id,
		"available": len(claims) == 0,
		"conflicts": claims,
	})
}

func (h *handler) createRoom(c *gin.Context) {
	var in service.CreateRoomInput
	if !bind(c, &in) {
		return
	}

	room, err := h.svc.Rooms.CreateRoom(c.Request.Context(), principal(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h *handler) updateRoom(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in service.UpdateRoomInput
	if !bind(c, &in) {
		return
	}

	room, err := h.svc.Rooms.UpdateRoom(c.Request.Context(), principal(c), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *handler) deactivateRoom(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	room, err := h.svc.Rooms.DeactivateRoom(c.Request.Context(), principal(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}
