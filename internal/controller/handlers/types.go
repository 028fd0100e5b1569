package handlers

import (
	"github.com/Freeeeeet/hotel_manager/internal/service"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Reply ответ бота: HTML текст и необязательная inline клавиатура
type Reply struct {
	Text   string
	Markup *models.InlineKeyboardMarkup
}

func text(s string) Reply {
	return Reply{Text: s}
}

type Handlers struct {
	users        *service.UserService
	rooms        *service.RoomService
	bookings     *service.BookingService
	reservations *service.ReservationService
	logger       *zap.Logger
}

func NewHandlers(
	users *service.UserService,
	rooms *service.RoomService,
	bookings *service.BookingService,
	reservations *service.ReservationService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		users:        users,
		rooms:        rooms,
		bookings:     bookings,
		reservations: reservations,
		logger:       logger,
	}
}
