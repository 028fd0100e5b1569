package formatting

import "github.com/Freeeeeet/hotel_manager/internal/model"

// StatusDisplay emoji и текст статуса для сообщений бота
type StatusDisplay struct {
	Emoji string
	Text  string
}

func (d StatusDisplay) String() string {
	return d.Emoji + " " + d.Text
}

var unknownStatus = StatusDisplay{"❓", "Неизвестно"}

// BookingStatus возвращает emoji и текст для статуса брони
func BookingStatus(status model.BookingStatus) StatusDisplay {
	displays := map[model.BookingStatus]StatusDisplay{
		model.BookingStatusPending:    {"⏳", "Ожидает подтверждения"},
		model.BookingStatusConfirmed:  {"✅", "Подтверждена"},
		model.BookingStatusCheckedIn:  {"🛎", "Гость заселён"},
		model.BookingStatusCheckedOut: {"🚪", "Гость выехал"},
		model.BookingStatusCompleted:  {"✔️", "Завершена"},
		model.BookingStatusCancelled:  {"❌", "Отменена"},
		model.BookingStatusNoShow:     {"🚫", "Гость не приехал"},
	}

	if display, ok := displays[status]; ok {
		return display
	}
	return unknownStatus
}

// ReservationStatus возвращает emoji и текст для статуса резерва
func ReservationStatus(status model.ReservationStatus) StatusDisplay {
	displays := map[model.ReservationStatus]StatusDisplay{
		model.ReservationStatusPending:            {"⏳", "Ждёт депозит"},
		model.ReservationStatusConfirmed:          {"💳", "Депозит внесён"},
		model.ReservationStatusCancelled:          {"❌", "Отменён"},
		model.ReservationStatusExpired:            {"⌛️", "Истёк"},
		model.ReservationStatusConvertedToBooking: {"🔁", "Превращён в бронь"},
	}

	if display, ok := displays[status]; ok {
		return display
	}
	return unknownStatus
}

// RoomStatus возвращает emoji и текст для статуса номера
func RoomStatus(status model.RoomStatus) StatusDisplay {
	displays := map[model.RoomStatus]StatusDisplay{
		model.RoomStatusAvailable:   {"🟢", "Свободен"},
		model.RoomStatusOccupied:    {"🔴", "Занят"},
		model.RoomStatusMaintenance: {"🛠", "Обслуживание"},
		model.RoomStatusCleaning:    {"🧹", "Уборка"},
		model.RoomStatusOutOfOrder:  {"⚫️", "Не работает"},
	}

	if display, ok := displays[status]; ok {
		return display
	}
	return unknownStatus
}
