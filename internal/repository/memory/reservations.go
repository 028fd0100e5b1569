package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/repository/base"
)

type ReservationRepository struct {
	s *Store
}

// Create сохраняет резерв; created_at и expires_at приходят от сервиса
func (r *ReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	defer r.s.autocommit(ctx)()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if res.CreatedAt.IsZero() {
		res.CreatedAt = r.s.clock()
	}
	res.ID = next(&r.s.seq.reservations)
	res.UpdatedAt = res.CreatedAt
	r.s.data.reservations[res.ID] = cloneReservation(res)

	return nil
}

func (r *ReservationRepository) GetByID(_ context.Context, id int64) (*model.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, ok := r.s.data.reservations[id]
	if !ok {
		return nil, nil
	}
	return cloneReservation(res), nil
}

func (r *ReservationRepository) LockByID(ctx context.Context, id int64) (*model.Reservation, error) {
	return r.GetByID(ctx, id)
}

func (r *ReservationRepository) Update(ctx context.Context, res *model.Reservation) error {
	defer r.s.autocommit(ctx)()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.data.reservations[res.ID]
	if !ok {
		return fmt.Errorf("reservation %d not found", res.ID)
	}

	if res.ConvertedToBooking != nil {
		for _, other := range r.s.data.reservations {
			if other.ID != res.ID && other.ConvertedToBooking != nil && *other.ConvertedToBooking == *res.ConvertedToBooking {
				return fmt.Errorf("update reservation: reservations_converted_to_booking_key: %w", base.ErrDuplicate)
			}
		}
	}

	updated := cloneReservation(res)
	updated.RoomID = current.RoomID
	updated.GuestID = current.GuestID
	updated.Stay = current.Stay
	updated.ExpiresAt = current.ExpiresAt
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = r.s.clock()

	r.s.data.reservations[res.ID] = updated
	res.UpdatedAt = updated.UpdatedAt
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id int64) error {
	defer r.s.autocommit(ctx)()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.reservations[id]; !ok {
		return fmt.Errorf("reservation %d not found", id)
	}
	delete(r.s.data.reservations, id)
	return nil
}

func (r *ReservationRepository) List(_ context.Context, filter model.ReservationFilter) ([]*model.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var list []*model.Reservation
	for _, res := range r.s.data.reservations {
		if filter.Match(res) {
			list = append(list, cloneReservation(res))
		}
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (r *ReservationRepository) FindOverlapping(_ context.Context, q model.ClaimQuery) ([]*model.Reservation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var list []*model.Reservation
	for _, res := range r.s.data.reservations {
		if res.RoomID != q.RoomID || res.ID == q.ExcludeReservationID || !res.Blocks(q.Now) {
			continue
		}
		if res.Stay.Overlaps(q.Stay) {
			list = append(list, cloneReservation(res))
		}
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Stay.CheckIn.Before(list[j].Stay.CheckIn) })
	return list, nil
}

func (r *ReservationRepository) ExpireStale(ctx context.Context, now time.Time) ([]*model.Reservation, error) {
	defer r.s.autocommit(ctx)()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var expired []*model.Reservation
	for id, res := range r.s.data.reservations {
		updated := cloneReservation(res)
		if !updated.ExpireIfDue(now) {
			continue
		}
		r.s.data.reservations[id] = updated
		expired = append(expired, cloneReservation(updated))
	}

	sort.Slice(expired, func(i, j int) bool { return expired[i].ID < expired[j].ID })
	return expired, nil
}
