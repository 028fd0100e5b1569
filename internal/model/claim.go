package model

import "time"

type ClaimKind string

const (
	ClaimKindBooking     ClaimKind = "booking"
	ClaimKindReservation ClaimKind = "reservation"
)

// OccupancyClaim общее представление брони и резерва, по которому
// движок доступности ищет конфликты одним путём для обеих сущностей.
type OccupancyClaim struct {
	Kind   ClaimKind `json:"kind"`
	ID     int64     `json:"id"`
	RoomID int64     `json:"room_id"`
	Status string    `json:"status"`
	Stay   Stay      `json:"stay"`
}

// ClaimQuery запрос пересечений для номера.
// ExcludeBookingID/ExcludeReservationID исключают саму проверяемую сущность.
type ClaimQuery struct {
	RoomID               int64
	Stay                 Stay
	ExcludeBookingID     int64
	ExcludeReservationID int64
	Now                  time.Time
}
