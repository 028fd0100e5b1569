package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/repository/base"
	"go.uber.org/zap"
)

// ConvertToBooking превращает подтверждённый резерв в бронь в одной транзакции:
// создание брони, закрытие резерва и синхронизация номера либо применяются вместе, либо не применяются.
// Повторный вызов для уже конвертированного резерва возвращает ErrAlreadyConverted.
func (s *ReservationService) ConvertToBooking(ctx context.Context, p model.Principal, id int64) (*model.Booking, *model.Reservation, error) {
	if !p.IsStaff() {
		return nil, nil, forbidden("convert reservation")
	}

	now := s.now()
	var (
		booking *model.Booking
		res     *model.Reservation
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		room, err := s.lockReservationRoom(ctx, id)
		if err != nil {
			return err
		}

		res, err = s.lockReservation(ctx, id)
		if err != nil {
			return err
		}
		if res.ConvertedToBooking != nil {
			return fmt.Errorf("reservation %d: %w", id, ErrAlreadyConverted)
		}
		if !res.Status.CanTransitionTo(model.ReservationStatusConvertedToBooking) {
			return reservationTransition(res.Status, model.ReservationStatusConvertedToBooking)
		}

		err = s.availability.EnsureAvailable(ctx, model.ClaimQuery{
			RoomID:               res.RoomID,
			Stay:                 res.Stay,
			ExcludeReservationID: res.ID,
			Now:                  now,
		})
		if err != nil {
			return err
		}

		guests, ok := splitGuests(res.GuestCount, room.Capacity)
		if !ok {
			return invalid("guest_count", fmt.Sprintf("%d guests do not fit into one booking", res.GuestCount))
		}

		doc := res.IdentificationDocument
		sourceID := res.ID
		booking = &model.Booking{
			RoomID:                 res.RoomID,
			GuestID:                res.GuestID,
			Stay:                   res.Stay,
			Guests:                 guests,
			TotalPrice:             res.TotalPrice,
			Status:                 model.BookingStatusConfirmed,
			SpecialRequests:        res.SpecialRequests,
			IdentificationDocument: &doc,
			SourceReservationID:    &sourceID,
			IsPaid:                 false,
			PaymentMethod:          res.PaymentMethod,
			PaymentReference:       res.PaymentReference,
		}

		if err := s.bookings.Create(ctx, booking); err != nil {
			switch {
			case errors.Is(err, base.ErrDuplicate):
				return fmt.Errorf("reservation %d: %w", id, ErrAlreadyConverted)
			case errors.Is(err, base.ErrOverlap):
				return &ConflictError{RoomID: res.RoomID}
			}
			return fmt.Errorf("create booking: %w", err)
		}

		res.Status = model.ReservationStatusConvertedToBooking
		res.ConvertedToBooking = &booking.ID
		if err := s.update(ctx, res); err != nil {
			return err
		}

		if err := s.roomState.Sync(ctx, res.RoomID, booking.Status); err != nil {
			return fmt.Errorf("sync room status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Reservation converted to booking",
		zap.Int64("reservation_id", res.ID),
		zap.Int64("booking_id", booking.ID),
		zap.Int64("room_id", res.RoomID),
		zap.Int64("actor_id", p.ID),
	)
	s.publish(ctx, model.EventReservationConverted, res, p.ID, 0)

	return booking, res, nil
}

// lockReservationRoom блокирует номер резерва раньше самого резерва,
// в том же порядке, что и создание заявок
func (s *ReservationService) lockReservationRoom(ctx context.Context, id int64) (*model.Room, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if res == nil {
		return nil, notFound("reservation", id)
	}

	room, err := s.rooms.LockByID(ctx, res.RoomID)
	if err != nil {
		return nil, fmt.Errorf("lock room: %w", err)
	}
	if room == nil {
		return nil, notFound("room", res.RoomID)
	}
	return room, nil
}

// splitGuests раскладывает общее число гостей резерва на взрослых и детей
// в пределах вместимости номера и ограничений брони
func splitGuests(count int, capacity model.Capacity) (model.Guests, bool) {
	adults := min(count, capacity.Adults, model.MaxBookingAdults)
	adults = max(adults, 1)
	children := max(count-adults, 0)
	if children > model.MaxBookingChildren {
		return model.Guests{}, false
	}
	return model.Guests{Adults: adults, Children: children}, true
}
