package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusPending            ReservationStatus = "pending"              // Ждёт оплаты депозита
	ReservationStatusConfirmed          ReservationStatus = "confirmed"            // Депозит внесён
	ReservationStatusCancelled          ReservationStatus = "cancelled"            // Отменён гостем
	ReservationStatusExpired            ReservationStatus = "expired"              // Истёк срок подтверждения
	ReservationStatusConvertedToBooking ReservationStatus = "converted_to_booking" // Превращён в бронь
)

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusPending:            {ReservationStatusConfirmed, ReservationStatusCancelled, ReservationStatusExpired},
	ReservationStatusConfirmed:          {ReservationStatusConvertedToBooking, ReservationStatusCancelled},
	ReservationStatusCancelled:          {},
	ReservationStatusExpired:            {},
	ReservationStatusConvertedToBooking: {},
}

const (
	// ReservationHoldPeriod время на подтверждение резерва
	ReservationHoldPeriod = 48 * time.Hour
	// DepositRate доля стоимости, которую нужно внести как депозит
	DepositRate = 0.20

	ReservationMaxGuests = 20
)

func (s ReservationStatus) IsValid() bool {
	_, ok := reservationTransitions[s]
	return ok
}

func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	for _, t := range reservationTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s ReservationStatus) IsTerminal() bool {
	return len(reservationTransitions[s]) == 0
}

func (s ReservationStatus) String() string {
	return string(s)
}

type Reservation struct {
	ID                     int64             `json:"id"`
	RoomID                 int64             `json:"room_id"`
	GuestID                int64             `json:"guest_id"`
	Stay                   Stay              `json:"stay"`
	GuestCount             int               `json:"guest_count"`
	TotalPrice             float64           `json:"total_price"`
	DepositAmount          float64           `json:"deposit_amount"`
	DepositPaid            bool              `json:"deposit_paid"`
	DepositPaidAt          *time.Time        `json:"deposit_paid_at,omitempty"`
	PaymentMethod          string            `json:"payment_method,omitempty"`
	PaymentReference       string            `json:"payment_reference,omitempty"`
	IdentificationDocument uuid.UUID         `json:"identification_document"`
	SpecialRequests        string            `json:"special_requests,omitempty"`
	Status                 ReservationStatus `json:"status"`
	ExpiresAt              time.Time         `json:"expires_at"`
	ConvertedToBooking     *int64            `json:"converted_to_booking,omitempty"`
	CancelledAt            *time.Time        `json:"cancelled_at,omitempty"`
	CancelledBy            *int64            `json:"cancelled_by,omitempty"`
	CancellationReason     string            `json:"cancellation_reason,omitempty"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

// DepositFor депозит 20% от стоимости, округлённый до целого
func DepositFor(total float64) float64 {
	return math.Round(total * DepositRate)
}

// ExpiresAtFor срок действия резерва, созданного в createdAt
func ExpiresAtFor(createdAt time.Time) time.Time {
	return createdAt.Add(ReservationHoldPeriod)
}

// IsExpired логически истёкший резерв: ещё pending, а срок уже наступил.
// Хранимый статус может отставать, поэтому проверка делается при каждом чтении.
func (r *Reservation) IsExpired(now time.Time) bool {
	return r.Status == ReservationStatusPending && !now.Before(r.ExpiresAt)
}

// Blocks участвует ли резерв в проверке конфликтов на момент now
func (r *Reservation) Blocks(now time.Time) bool {
	switch r.Status {
	case ReservationStatusConfirmed:
		return true
	case ReservationStatusPending:
		return !r.IsExpired(now)
	}
	return false
}

// ExpireIfDue переводит резерв в expired, если срок вышел. Возвращает true при изменении.
func (r *Reservation) ExpireIfDue(now time.Time) bool {
	if !r.IsExpired(now) {
		return false
	}
	r.Status = ReservationStatusExpired
	r.UpdatedAt = now
	return true
}

// Refund возврат при отмене: весь депозит, если он был внесён
func (r *Reservation) Refund() float64 {
	if r.DepositPaid {
		return r.DepositAmount
	}
	return 0
}

func (r *Reservation) Claim() OccupancyClaim {
	return OccupancyClaim{
		Kind:   ClaimKindReservation,
		ID:     r.ID,
		RoomID: r.RoomID,
		Status: string(r.Status),
		Stay:   r.Stay,
	}
}

type ReservationFilter struct {
	GuestID int64
	RoomID  int64
	Status  ReservationStatus
}

func (f ReservationFilter) Match(r *Reservation) bool {
	if f.GuestID != 0 && r.GuestID != f.GuestID {
		return false
	}
	if f.RoomID != 0 && r.RoomID != f.RoomID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}
