package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/go-telegram/bot/models"
)

// Callback data: action:id
const (
	ConfirmBooking     = "bk_confirm:"
	CheckInBooking     = "bk_checkin:"
	CheckOutBooking    = "bk_checkout:"
	ShowBooking        = "bk_show:"
	ConvertReservation = "rs_convert:"
	ShowReservation    = "rs_show:"
)

func button(text, action string, id int64) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: action + strconv.FormatInt(id, 10),
	}
}

// markup nil, если кнопок нет
func markup(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	kept := make([][]models.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			kept = append(kept, row)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: kept}
}

// bookingActions кнопки следующего шага жизненного цикла брони
func bookingActions(b *model.Booking) []models.InlineKeyboardButton {
	switch b.Status {
	case model.BookingStatusPending:
		return []models.InlineKeyboardButton{button("✅ Подтвердить", ConfirmBooking, b.ID)}
	case model.BookingStatusConfirmed:
		return []models.InlineKeyboardButton{button("🛎 Заселить", CheckInBooking, b.ID)}
	case model.BookingStatusCheckedIn:
		return []models.InlineKeyboardButton{button("🚪 Выселить", CheckOutBooking, b.ID)}
	}
	return nil
}

func reservationActions(r *model.Reservation) []models.InlineKeyboardButton {
	if r.Status == model.ReservationStatusConfirmed && r.ConvertedToBooking == nil {
		return []models.InlineKeyboardButton{button("🔁 В бронь", ConvertReservation, r.ID)}
	}
	return nil
}

// ParseCallback разбирает "action:id" в префикс действия и ID
func ParseCallback(data string) (string, int64, error) {
	idx := strings.LastIndexByte(data, ':')
	if idx < 0 {
		return "", 0, fmt.Errorf("invalid callback data %q", data)
	}

	id, err := strconv.ParseInt(data[idx+1:], 10, 64)
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("invalid callback id in %q", data)
	}

	return data[:idx+1], id, nil
}
