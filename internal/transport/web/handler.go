package web

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Freeeeeet/hotel_manager/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services сервисы доменного ядра, которые отдаёт HTTP API
type Services struct {
	Rooms        *service.RoomService
	Bookings     *service.BookingService
	Reservations *service.ReservationService
	Users        *service.UserService
}

type handler struct {
	svc    Services
	logger *zap.Logger
}

// bind разбирает JSON тело. Пустое тело допустимо для действий без параметров.
func bind(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		// chunked запрос без тела приходит с ContentLength -1
		if errors.Is(err, io.EOF) {
			return true
		}
		badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// dateQuery принимает RFC3339 или YYYY-MM-DD
func dateQuery(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		badRequest(c, key+" is required")
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		badRequest(c, "invalid "+key)
		return time.Time{}, false
	}
	return t, true
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) me(c *gin.Context) {
	user, err := h.svc.Users.GetByID(c.Request.Context(), principal(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handler) registerUser(c *gin.Context) {
	var in service.RegisterUserInput
	if !bind(c, &in) {
		return
	}

	user, err := h.svc.Users.RegisterUser(c.Request.Context(), principal(c), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
