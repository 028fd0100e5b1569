package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/repository/base"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jan(day int) time.Time {
	return time.Date(2030, time.January, day, 0, 0, 0, 0, time.UTC)
}

func newRoom(t *testing.T, s *Store, number string) *model.Room {
	t.Helper()
	room := &model.Room{
		Number:        number,
		Type:          model.RoomTypeDouble,
		PricePerNight: 100,
		Capacity:      model.Capacity{Adults: 2, Children: 1},
		Status:        model.RoomStatusAvailable,
		IsActive:      true,
	}
	require.NoError(t, s.Rooms().Create(context.Background(), room))
	return room
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	room := newRoom(t, s, "101")

	errBoom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Rooms().UpdateStatus(ctx, room.ID, model.RoomStatusOccupied))
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	got, err := s.Rooms().GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoomStatusAvailable, got.Status)
}

func TestWriteOutsideTxSurvivesRollback(t *testing.T) {
	s := New()
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	errBoom := errors.New("boom")

	go func() {
		txDone <- s.WithinTx(ctx, func(ctx context.Context) error {
			close(started)
			<-release
			return errBoom
		})
	}()
	<-started

	room := &model.Room{Number: "202", Type: model.RoomTypeSingle, Capacity: model.Capacity{Adults: 1}}
	created := make(chan error, 1)
	go func() {
		created <- s.Rooms().Create(ctx, room)
	}()

	close(release)
	assert.ErrorIs(t, <-txDone, errBoom)
	require.NoError(t, <-created)

	got, err := s.Rooms().GetByID(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "202", got.Number)
}

func TestWithinTxNested(t *testing.T) {
	s := New()
	ctx := context.Background()
	room := newRoom(t, s, "101")

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		return s.WithinTx(ctx, func(ctx context.Context) error {
			return s.Rooms().UpdateStatus(ctx, room.ID, model.RoomStatusCleaning)
		})
	})
	require.NoError(t, err)

	got, _ := s.Rooms().GetByID(ctx, room.ID)
	assert.Equal(t, model.RoomStatusCleaning, got.Status)
}

func TestRoomNumberUnique(t *testing.T) {
	s := New()
	newRoom(t, s, "101")

	err := s.Rooms().Create(context.Background(), &model.Room{Number: "101"})
	assert.ErrorIs(t, err, base.ErrDuplicate)
}

func TestGetByIDMissing(t *testing.T) {
	s := New()
	room, err := s.Rooms().GetByID(context.Background(), 42)
	assert.NoError(t, err)
	assert.Nil(t, room)
}

func TestReturnedEntitiesAreCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	room := newRoom(t, s, "101")

	got, _ := s.Rooms().GetByID(ctx, room.ID)
	got.Status = model.RoomStatusOutOfOrder

	again, _ := s.Rooms().GetByID(ctx, room.ID)
	assert.Equal(t, model.RoomStatusAvailable, again.Status)
}

func TestBookingExclusion(t *testing.T) {
	s := New()
	ctx := context.Background()
	room := newRoom(t, s, "101")
	bookings := s.Bookings()

	first := &model.Booking{RoomID: room.ID, GuestID: 1, Stay: model.NewStay(jan(10), jan(15)), Status: model.BookingStatusConfirmed}
	require.NoError(t, bookings.Create(ctx, first))

	// pending не блокирует
	pending := &model.Booking{RoomID: room.ID, GuestID: 2, Stay: model.NewStay(jan(12), jan(14)), Status: model.BookingStatusPending}
	require.NoError(t, bookings.Create(ctx, pending))

	pending.Status = model.BookingStatusConfirmed
	assert.ErrorIs(t, bookings.Update(ctx, pending), base.ErrOverlap)

	adjacent := &model.Booking{RoomID: room.ID, GuestID: 3, Stay: model.NewStay(jan(15), jan(18)), Status: model.BookingStatusConfirmed}
	assert.NoError(t, bookings.Create(ctx, adjacent))
}

func TestBookingFindOverlapping(t *testing.T) {
	s := New()
	ctx := context.Background()
	room := newRoom(t, s, "101")
	bookings := s.Bookings()

	confirmed := &model.Booking{RoomID: room.ID, Stay: model.NewStay(jan(10), jan(15)), Status: model.BookingStatusConfirmed}
	cancelled := &model.Booking{RoomID: room.ID, Stay: model.NewStay(jan(10), jan(15)), Status: model.BookingStatusCancelled}
	require.NoError(t, bookings.Create(ctx, confirmed))
	require.NoError(t, bookings.Create(ctx, cancelled))

	found, err := bookings.FindOverlapping(ctx, model.ClaimQuery{RoomID: room.ID, Stay: model.NewStay(jan(12), jan(14))})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, confirmed.ID, found[0].ID)

	found, err = bookings.FindOverlapping(ctx, model.ClaimQuery{
		RoomID:           room.ID,
		Stay:             model.NewStay(jan(12), jan(14)),
		ExcludeBookingID: confirmed.ID,
	})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestReservationOverlapAndExpiry(t *testing.T) {
	s := New()
	ctx := context.Background()
	room := newRoom(t, s, "101")
	reservations := s.Reservations()

	created := jan(1)
	res := &model.Reservation{
		RoomID:    room.ID,
		Stay:      model.NewStay(jan(10), jan(15)),
		Status:    model.ReservationStatusPending,
		CreatedAt: created,
		ExpiresAt: model.ExpiresAtFor(created),
	}
	require.NoError(t, reservations.Create(ctx, res))

	q := model.ClaimQuery{RoomID: room.ID, Stay: model.NewStay(jan(12), jan(13)), Now: created.Add(time.Hour)}
	found, err := reservations.FindOverlapping(ctx, q)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	q.Now = res.ExpiresAt
	found, err = reservations.FindOverlapping(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, found)

	expired, err := reservations.ExpireStale(ctx, res.ExpiresAt)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, model.ReservationStatusExpired, expired[0].Status)

	got, _ := reservations.GetByID(ctx, res.ID)
	assert.Equal(t, model.ReservationStatusExpired, got.Status)
	assert.Equal(t, res.ExpiresAt, got.ExpiresAt)
}

func TestReservationConvertedToBookingUnique(t *testing.T) {
	s := New()
	ctx := context.Background()
	reservations := s.Reservations()

	bookingID := int64(7)
	a := &model.Reservation{Status: model.ReservationStatusConfirmed}
	b := &model.Reservation{Status: model.ReservationStatusConfirmed}
	require.NoError(t, reservations.Create(ctx, a))
	require.NoError(t, reservations.Create(ctx, b))

	a.ConvertedToBooking = &bookingID
	require.NoError(t, reservations.Update(ctx, a))

	b.ConvertedToBooking = &bookingID
	assert.ErrorIs(t, reservations.Update(ctx, b), base.ErrDuplicate)
}

func TestUsersByTelegramID(t *testing.T) {
	s := New()
	ctx := context.Background()
	tg := int64(555)

	require.NoError(t, s.Users().Create(ctx, &model.User{Email: "a@example.com", Role: model.RoleStaff, TelegramID: &tg}))

	u, err := s.Users().GetByTelegramID(ctx, tg)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, model.RoleStaff, u.Role)

	u, err = s.Users().GetByTelegramID(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, u)
}
