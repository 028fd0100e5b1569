package model

import "time"

type EventType string

const (
	EventBookingCreated       EventType = "booking.created"
	EventBookingStatusChanged EventType = "booking.status_changed"
	EventBookingCancelled     EventType = "booking.cancelled"

	EventReservationCreated   EventType = "reservation.created"
	EventReservationConfirmed EventType = "reservation.confirmed"
	EventReservationCancelled EventType = "reservation.cancelled"
	EventReservationExpired   EventType = "reservation.expired"
	EventReservationConverted EventType = "reservation.converted"
)

// Event уведомление о зафиксированном изменении жизненного цикла
type Event struct {
	Type          EventType `json:"type"`
	RoomID        int64     `json:"room_id"`
	BookingID     int64     `json:"booking_id,omitempty"`
	ReservationID int64     `json:"reservation_id,omitempty"`
	Status        string    `json:"status"`
	ActorID       int64     `json:"actor_id,omitempty"`
	Amount        float64   `json:"amount,omitempty"` // Возврат или депозит, если применимо
	Stay          Stay      `json:"stay"`
	At            time.Time `json:"at"`
}
