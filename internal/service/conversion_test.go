package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmedReservation(t *testing.T, f *fixture, roomID int64) *model.Reservation {
	t.Helper()
	res := f.reserve(t, roomID, jan(10), jan(15), 2000)
	res, err := f.reservations.ConfirmReservation(context.Background(), f.guest, res.ID, ConfirmReservationInput{
		PaymentMethod:    "card",
		PaymentReference: "dep-1",
	})
	require.NoError(t, err)
	return res
}

func TestConvertToBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.room(t, "101", 2, 1)
	res := confirmedReservation(t, f, room.ID)

	booking, converted, err := f.reservations.ConvertToBooking(ctx, f.staff, res.ID)
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusConfirmed, booking.Status)
	assert.False(t, booking.IsPaid)
	assert.Equal(t, res.RoomID, booking.RoomID)
	assert.Equal(t, res.GuestID, booking.GuestID)
	assert.Equal(t, res.Stay, booking.Stay)
	assert.Equal(t, res.GuestCount, booking.Guests.Total())
	assert.Equal(t, res.TotalPrice, booking.TotalPrice)
	assert.Equal(t, "card", booking.PaymentMethod)
	assert.Equal(t, "dep-1", booking.PaymentReference)
	require.NotNil(t, booking.IdentificationDocument)
	assert.Equal(t, res.IdentificationDocument, *booking.IdentificationDocument)
	require.NotNil(t, booking.SourceReservationID)
	assert.Equal(t, res.ID, *booking.SourceReservationID)

	assert.Equal(t, model.ReservationStatusConvertedToBooking, converted.Status)
	require.NotNil(t, converted.ConvertedToBooking)
	assert.Equal(t, booking.ID, *converted.ConvertedToBooking)

	assert.Equal(t, model.RoomStatusOccupied, f.roomStatus(t, room.ID))
	assert.Contains(t, f.notifier.types(), model.EventReservationConverted)
}

func TestConvertTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.room(t, "101", 2, 1)
	res := confirmedReservation(t, f, room.ID)

	_, _, err := f.reservations.ConvertToBooking(ctx, f.staff, res.ID)
	require.NoError(t, err)

	_, _, err = f.reservations.ConvertToBooking(ctx, f.admin, res.ID)
	require.ErrorIs(t, err, ErrAlreadyConverted)
	assert.NotErrorIs(t, err, ErrInvalidTransition)

	bookings, err := f.bookings.ListBookings(ctx, f.staff, model.BookingFilter{RoomID: room.ID})
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestConvertRequiresConfirmedReservation(t *testing.T) {
	f := newFixture(t)
	room := f.room(t, "101", 2, 1)
	res := f.reserve(t, room.ID, jan(10), jan(15), 2000)

	_, _, err := f.reservations.ConvertToBooking(context.Background(), f.staff, res.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConvertRequiresStaff(t *testing.T) {
	f := newFixture(t)
	room := f.room(t, "101", 2, 1)
	res := confirmedReservation(t, f, room.ID)

	_, _, err := f.reservations.ConvertToBooking(context.Background(), f.guest, res.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = f.reservations.ConvertToBooking(context.Background(), f.staff, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConvertIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.room(t, "101", 2, 1)
	res := confirmedReservation(t, f, room.ID)

	// Бронь в обход сервисов, как будто её записал параллельный процесс
	intruder := &model.Booking{
		RoomID:  room.ID,
		GuestID: f.other.ID,
		Stay:    model.NewStay(jan(12), jan(13)),
		Guests:  model.Guests{Adults: 1},
		Status:  model.BookingStatusConfirmed,
	}
	require.NoError(t, f.store.Bookings().Create(ctx, intruder))

	_, _, err := f.reservations.ConvertToBooking(ctx, f.staff, res.ID)
	require.ErrorIs(t, err, ErrConflict)

	stored, err := f.store.Reservations().GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusConfirmed, stored.Status)
	assert.Nil(t, stored.ConvertedToBooking)

	bookings, err := f.bookings.ListBookings(ctx, f.staff, model.BookingFilter{RoomID: room.ID})
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestDeleteConvertedReservationKeepsBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.room(t, "101", 2, 1)
	res := confirmedReservation(t, f, room.ID)

	booking, _, err := f.reservations.ConvertToBooking(ctx, f.staff, res.ID)
	require.NoError(t, err)

	require.NoError(t, f.reservations.DeleteReservation(ctx, f.guest, res.ID))

	got, err := f.bookings.GetBooking(ctx, f.guest, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, got.Status)
}

func TestSplitGuests(t *testing.T) {
	tests := []struct {
		count    int
		capacity model.Capacity
		want     model.Guests
		ok       bool
	}{
		{count: 2, capacity: model.Capacity{Adults: 2, Children: 1}, want: model.Guests{Adults: 2}, ok: true},
		{count: 3, capacity: model.Capacity{Adults: 2, Children: 1}, want: model.Guests{Adults: 2, Children: 1}, ok: true},
		{count: 1, capacity: model.Capacity{Adults: 4}, want: model.Guests{Adults: 1}, ok: true},
		{count: 15, capacity: model.Capacity{Adults: 10, Children: 10}, want: model.Guests{Adults: 10, Children: 5}, ok: true},
		{count: 20, capacity: model.Capacity{Adults: 10, Children: 10}, ok: false},
	}

	for _, tt := range tests {
		got, ok := splitGuests(tt.count, tt.capacity)
		assert.Equal(t, tt.ok, ok, "count %d", tt.count)
		assert.Equal(t, tt.want, got, "count %d", tt.count)
	}
}

func TestConvertRejectsGuestsBeyondBookingLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.room(t, "301", 10, 10)

	res, err := f.reservations.CreateReservation(ctx, f.guest, CreateReservationInput{
		RoomID:                 room.ID,
		CheckIn:                jan(10),
		CheckOut:               jan(12),
		GuestCount:             20,
		IdentificationDocument: uuid.New(),
	})
	require.NoError(t, err)
	_, err = f.reservations.ConfirmReservation(ctx, f.guest, res.ID, ConfirmReservationInput{})
	require.NoError(t, err)

	_, _, err = f.reservations.ConvertToBooking(ctx, f.staff, res.ID)
	require.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "guest_count")

	got, err := f.reservations.GetReservation(ctx, f.staff, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationStatusConfirmed, got.Status)
	assert.Nil(t, got.ConvertedToBooking)

	bookings, err := f.bookings.ListBookings(ctx, f.staff, model.BookingFilter{RoomID: room.ID})
	require.NoError(t, err)
	assert.Empty(t, bookings)
}
