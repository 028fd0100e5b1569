package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/repository/base"
)

type BookingRepository struct {
	s *Store
}

// checkConstraints повторяет ограничения таблицы bookings: исключение пересечений
// для блокирующих статусов и уникальность source_reservation_id. Вызывать под s.mu.
func (r *BookingRepository) checkConstraints(b *model.Booking) error {
	for _, other := range r.s.data.bookings {
		if other.ID == b.ID {
			continue
		}
		if b.SourceReservationID != nil && other.SourceReservationID != nil &&
			*b.SourceReservationID == *other.SourceReservationID {
			return fmt.Errorf("bookings_source_reservation_id_key: %w", base.ErrDuplicate)
		}
		if b.Status.Blocks() && other.Status.Blocks() &&
			other.RoomID == b.RoomID && other.Stay.Overlaps(b.Stay) {
			return fmt.Errorf("bookings_no_overlap: %w", base.ErrOverlap)
		}
	}
	return nil
}

func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	defer r.s.autocommit(ctx)()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkConstraints(booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	now := r.s.clock()
	booking.ID = next(&r.s.seq.bookings)
	booking.CreatedAt = now
	booking.UpdatedAt = now
	r.s.data.bookings[booking.ID] = cloneBooking(booking)

	return nil
}

func (r *BookingRepository) GetByID(_ context.Context, id int64) (*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	booking, ok := r.s.data.bookings[id]
	if !ok {
		return nil, nil
	}
	return cloneBooking(booking), nil
}

func (r *BookingRepository) LockByID(ctx context.Context, id int64) (*model.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r *BookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	defer r.s.autocommit(ctx)()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.data.bookings[booking.ID]
	if !ok {
		return fmt.Errorf("booking %d not found", booking.ID)
	}

	// Комната, даты и гость после создания не меняются
	updated := cloneBooking(booking)
	updated.RoomID = current.RoomID
	updated.GuestID = current.GuestID
	updated.Stay = current.Stay
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = r.s.clock()

	if err := r.checkConstraints(updated); err != nil {
		return fmt.Errorf("update booking: %w", err)
	}

	r.s.data.bookings[booking.ID] = updated
	booking.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *BookingRepository) List(_ context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var bookings []*model.Booking
	for _, b := range r.s.data.bookings {
		if filter.Match(b) {
			bookings = append(bookings, cloneBooking(b))
		}
	}

	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].Stay.CheckIn.Equal(bookings[j].Stay.CheckIn) {
			return bookings[i].ID > bookings[j].ID
		}
		return bookings[i].Stay.CheckIn.After(bookings[j].Stay.CheckIn)
	})
	return bookings, nil
}

func (r *BookingRepository) FindOverlapping(_ context.Context, q model.ClaimQuery) ([]*model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var bookings []*model.Booking
	for _, b := range r.s.data.bookings {
		if b.RoomID != q.RoomID || b.ID == q.ExcludeBookingID || !b.Status.Blocks() {
			continue
		}
		if b.Stay.Overlaps(q.Stay) {
			bookings = append(bookings, cloneBooking(b))
		}
	}

	sort.Slice(bookings, func(i, j int) bool { return bookings[i].Stay.CheckIn.Before(bookings[j].Stay.CheckIn) })
	return bookings, nil
}
