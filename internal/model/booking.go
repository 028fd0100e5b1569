package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"     // Создана гостем, ждёт подтверждения
	BookingStatusConfirmed  BookingStatus = "confirmed"   // Подтверждена персоналом
	BookingStatusCheckedIn  BookingStatus = "checked_in"  // Гость заселён
	BookingStatusCheckedOut BookingStatus = "checked_out" // Гость выехал
	BookingStatusCompleted  BookingStatus = "completed"   // Закрыта
	BookingStatusCancelled  BookingStatus = "cancelled"   // Отменена
	BookingStatusNoShow     BookingStatus = "no_show"     // Гость не приехал
)

// bookingTransitions конечный автомат брони
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusCheckedIn, BookingStatusCancelled, BookingStatusCompleted, BookingStatusNoShow},
	BookingStatusCheckedIn:  {BookingStatusCheckedOut},
	BookingStatusCheckedOut: {},
	BookingStatusCompleted:  {},
	BookingStatusCancelled:  {},
	BookingStatusNoShow:     {},
}

// BookingBlockingStatuses статусы, при которых бронь блокирует номер для новых заявок
var BookingBlockingStatuses = []BookingStatus{BookingStatusConfirmed, BookingStatusCheckedIn}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// CanTransitionTo разрешён ли переход в target
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// Blocks участвует ли бронь в этом статусе в проверке конфликтов
func (s BookingStatus) Blocks() bool {
	for _, b := range BookingBlockingStatuses {
		if b == s {
			return true
		}
	}
	return false
}

func (s BookingStatus) String() string {
	return string(s)
}

// Пределы состава гостей одной брони
const (
	MaxBookingAdults   = 10
	MaxBookingChildren = 5
)

// Guests состав гостей брони
type Guests struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

func (g Guests) Total() int {
	return g.Adults + g.Children
}

// InternalNote служебная заметка персонала, список только дополняется
type InternalNote struct {
	Note      string    `json:"note"`
	AuthorID  int64     `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Booking struct {
	ID                     int64           `json:"id"`
	RoomID                 int64           `json:"room_id"`
	GuestID                int64           `json:"guest_id"`
	Stay                   Stay            `json:"stay"`
	Guests                 Guests          `json:"guests"`
	TotalPrice             float64         `json:"total_price"`
	Status                 BookingStatus   `json:"status"`
	SpecialRequests        string          `json:"special_requests,omitempty"`
	IdentificationDocument *uuid.UUID      `json:"identification_document,omitempty"`
	SourceReservationID    *int64          `json:"source_reservation_id,omitempty"` // Бронь получена конвертацией резерва
	IsPaid                 bool            `json:"is_paid"`
	PaidAt                 *time.Time      `json:"paid_at,omitempty"`
	PaymentMethod          string          `json:"payment_method,omitempty"`
	PaymentReference       string          `json:"payment_reference,omitempty"`
	PaymentResult          json.RawMessage `json:"payment_result,omitempty"` // Непрозрачные данные платёжного шлюза
	RefundAmount           *float64        `json:"refund_amount,omitempty"`
	CheckedInAt            *time.Time      `json:"checked_in_at,omitempty"`
	CheckedInBy            *int64          `json:"checked_in_by,omitempty"`
	CheckedOutAt           *time.Time      `json:"checked_out_at,omitempty"`
	CheckedOutBy           *int64          `json:"checked_out_by,omitempty"`
	CancelledAt            *time.Time      `json:"cancelled_at,omitempty"`
	CancelledBy            *int64          `json:"cancelled_by,omitempty"`
	CancellationReason     string          `json:"cancellation_reason,omitempty"`
	InternalNotes          []InternalNote  `json:"internal_notes,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// ApplyStatus переводит бронь в status и проставляет время и автора
// только при первом входе в статус. Повторная установка того же статуса ничего не меняет.
func (b *Booking) ApplyStatus(status BookingStatus, actorID int64, now time.Time) {
	if b.Status == status {
		return
	}
	b.Status = status

	switch status {
	case BookingStatusCancelled:
		if b.CancelledAt == nil {
			b.CancelledAt = &now
			b.CancelledBy = &actorID
		}
	case BookingStatusCheckedIn:
		if b.CheckedInAt == nil {
			b.CheckedInAt = &now
			b.CheckedInBy = &actorID
		}
	case BookingStatusCheckedOut:
		if b.CheckedOutAt == nil {
			b.CheckedOutAt = &now
			b.CheckedOutBy = &actorID
		}
	}
}

// Claim представление брони для движка доступности
func (b *Booking) Claim() OccupancyClaim {
	return OccupancyClaim{
		Kind:   ClaimKindBooking,
		ID:     b.ID,
		RoomID: b.RoomID,
		Status: string(b.Status),
		Stay:   b.Stay,
	}
}

// Политика возврата при отмене брони
const (
	FullRefundWindow    = 24 * time.Hour
	PartialRefundFactor = 0.5
)

// CalculateRefund считает возврат на момент now. Имеет смысл только для отменённой брони:
// больше 24 часов до заезда - 100%, от 0 до 24 часов - 50%, заезд уже наступил - 0.
func (b *Booking) CalculateRefund(now time.Time) float64 {
	if b.Status != BookingStatusCancelled {
		return 0
	}
	return RefundFor(b.TotalPrice, b.Stay.CheckIn.Sub(now))
}

// RefundFor сумма возврата по времени, оставшемуся до заезда
func RefundFor(total float64, untilCheckIn time.Duration) float64 {
	switch {
	case untilCheckIn > FullRefundWindow:
		return total
	case untilCheckIn > 0:
		return total * PartialRefundFactor
	default:
		return 0
	}
}

// BookingFilter фильтр для списка бронирований
type BookingFilter struct {
	GuestID int64
	RoomID  int64
	Status  BookingStatus
}

func (f BookingFilter) Match(b *Booking) bool {
	if f.GuestID != 0 && b.GuestID != f.GuestID {
		return false
	}
	if f.RoomID != 0 && b.RoomID != f.RoomID {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	return true
}
