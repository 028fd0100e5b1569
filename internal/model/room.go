package model

import "time"

type RoomType string

const (
	RoomTypeSingle       RoomType = "single"
	RoomTypeDouble       RoomType = "double"
	RoomTypeTwin         RoomType = "twin"
	RoomTypeStandard     RoomType = "standard"
	RoomTypeDeluxe       RoomType = "deluxe"
	RoomTypeSuite        RoomType = "suite"
	RoomTypeFamily       RoomType = "family"
	RoomTypePresidential RoomType = "presidential"
)

// RoomTypes все допустимые категории номеров
var RoomTypes = []RoomType{
	RoomTypeSingle,
	RoomTypeDouble,
	RoomTypeTwin,
	RoomTypeStandard,
	RoomTypeDeluxe,
	RoomTypeSuite,
	RoomTypeFamily,
	RoomTypePresidential,
}

func (t RoomType) IsValid() bool {
	for _, rt := range RoomTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// RoomStatus грубый статус номера. Это кэш занятости для витрины,
// источником истины для конфликтов служит проверка пересечения интервалов.
type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusMaintenance RoomStatus = "maintenance"
	RoomStatusCleaning    RoomStatus = "cleaning"
	RoomStatusOutOfOrder  RoomStatus = "out_of_order"
)

func (s RoomStatus) IsValid() bool {
	switch s {
	case RoomStatusAvailable, RoomStatusOccupied, RoomStatusMaintenance, RoomStatusCleaning, RoomStatusOutOfOrder:
		return true
	}
	return false
}

const RoomMaxPricePerNight = 10000

type Capacity struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

// Total общее число мест
func (c Capacity) Total() int {
	return c.Adults + c.Children
}

type Room struct {
	ID            int64      `json:"id"`
	Number        string     `json:"number"`
	Type          RoomType   `json:"type"`
	Description   string     `json:"description"`
	PricePerNight float64    `json:"price_per_night"`
	Capacity      Capacity   `json:"capacity"`
	Amenities     []string   `json:"amenities"`
	Status        RoomStatus `json:"status"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// RoomFilter фильтр для списка номеров
type RoomFilter struct {
	Type        RoomType
	Status      RoomStatus
	OnlyActive  bool
	MinCapacity int
}

// Match проверяет номер по фильтру
func (f RoomFilter) Match(r *Room) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.OnlyActive && !r.IsActive {
		return false
	}
	if f.MinCapacity > 0 && r.Capacity.Total() < f.MinCapacity {
		return false
	}
	return true
}

// RoomStatusForBooking возвращает статус номера, который должен следовать
// за переходом брони. Второй результат false, если статус номера не меняется.
func RoomStatusForBooking(status BookingStatus) (RoomStatus, bool) {
	switch status {
	case BookingStatusCancelled, BookingStatusCompleted, BookingStatusCheckedOut:
		return RoomStatusAvailable, true
	case BookingStatusConfirmed, BookingStatusCheckedIn:
		return RoomStatusOccupied, true
	}
	return "", false
}
