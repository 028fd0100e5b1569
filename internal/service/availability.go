package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/hotel_manager/internal/model"
)

// AvailabilityEngine ищет пересечения запрошенного интервала с бронями и резервами номера.
// Только чтение; блокировку номера берёт вызывающий сервис.
type AvailabilityEngine struct {
	bookings     BookingStore
	reservations ReservationStore
}

func NewAvailabilityEngine(bookings BookingStore, reservations ReservationStore) *AvailabilityEngine {
	return &AvailabilityEngine{
		bookings:     bookings,
		reservations: reservations,
	}
}

// FindOverlapping возвращает все конфликтующие заявки. Всегда опрашивает обе коллекции.
func (e *AvailabilityEngine) FindOverlapping(ctx context.Context, q model.ClaimQuery) ([]model.OccupancyClaim, error) {
	bookings, err := e.bookings.FindOverlapping(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find overlapping bookings: %w", err)
	}

	reservations, err := e.reservations.FindOverlapping(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find overlapping reservations: %w", err)
	}

	claims := make([]model.OccupancyClaim, 0, len(bookings)+len(reservations))
	for _, b := range bookings {
		if b.Status.Blocks() && b.Stay.Overlaps(q.Stay) {
			claims = append(claims, b.Claim())
		}
	}
	for _, r := range reservations {
		if r.Blocks(q.Now) && r.Stay.Overlaps(q.Stay) {
			claims = append(claims, r.Claim())
		}
	}

	return claims, nil
}

// EnsureAvailable возвращает *ConflictError, если интервал занят
func (e *AvailabilityEngine) EnsureAvailable(ctx context.Context, q model.ClaimQuery) error {
	claims, err := e.FindOverlapping(ctx, q)
	if err != nil {
		return err
	}
	if len(claims) > 0 {
		return &ConflictError{RoomID: q.RoomID, Claims: claims}
	}
	return nil
}
