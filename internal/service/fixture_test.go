package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.Event
}

func (n *recordingNotifier) Publish(_ context.Context, event model.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) types() []model.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()

	types := make([]model.EventType, 0, len(n.events))
	for _, e := range n.events {
		types = append(types, e.Type)
	}
	return types
}

type fixture struct {
	store        *memory.Store
	rooms        *RoomService
	bookings     *BookingService
	reservations *ReservationService
	users        *UserService
	notifier     *recordingNotifier

	now time.Time

	admin model.Principal
	staff model.Principal
	guest model.Principal
	other model.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	logger := zap.NewNop()
	f := &fixture{
		store:    store,
		notifier: &recordingNotifier{},
		now:      time.Date(2030, time.January, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	store.SetClock(clock)

	availability := NewAvailabilityEngine(store.Bookings(), store.Reservations())
	roomState := NewRoomStateManager(store.Rooms(), logger)

	f.rooms = NewRoomService(store.Rooms(), availability, logger)
	f.rooms.now = clock
	f.bookings = NewBookingService(store, store.Rooms(), store.Bookings(), store.Users(), availability, roomState, f.notifier, logger)
	f.bookings.now = clock
	f.reservations = NewReservationService(store, store.Rooms(), store.Bookings(), store.Reservations(), store.Users(), availability, roomState, f.notifier, logger)
	f.reservations.now = clock
	f.users = NewUserService(store.Users(), logger)

	f.admin = f.user(t, "admin@example.com", model.RoleAdmin)
	f.staff = f.user(t, "staff@example.com", model.RoleStaff)
	f.guest = f.user(t, "guest@example.com", model.RoleGuest)
	f.other = f.user(t, "other@example.com", model.RoleGuest)

	return f
}

func (f *fixture) user(t *testing.T, email string, role model.Role) model.Principal {
	t.Helper()
	u := &model.User{Email: email, Role: role}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u.Principal()
}

func (f *fixture) room(t *testing.T, number string, adults, children int) *model.Room {
	t.Helper()
	room, err := f.rooms.CreateRoom(context.Background(), f.admin, CreateRoomInput{
		Number:        number,
		Type:          model.RoomTypeDouble,
		PricePerNight: 100,
		Adults:        adults,
		Children:      children,
	})
	require.NoError(t, err)
	return room
}

func (f *fixture) roomStatus(t *testing.T, id int64) model.RoomStatus {
	t.Helper()
	room, err := f.rooms.GetRoom(context.Background(), id)
	require.NoError(t, err)
	return room.Status
}

func (f *fixture) book(t *testing.T, roomID int64, checkIn, checkOut time.Time) *model.Booking {
	t.Helper()
	b, err := f.bookings.CreateBooking(context.Background(), f.guest, CreateBookingInput{
		RoomID:   roomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Adults:   1,
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) confirmedBooking(t *testing.T, roomID int64, checkIn, checkOut time.Time) *model.Booking {
	t.Helper()
	b := f.book(t, roomID, checkIn, checkOut)
	b, err := f.bookings.ConfirmBooking(context.Background(), f.staff, b.ID)
	require.NoError(t, err)
	return b
}

func (f *fixture) reserve(t *testing.T, roomID int64, checkIn, checkOut time.Time, total float64) *model.Reservation {
	t.Helper()
	res, err := f.reservations.CreateReservation(context.Background(), f.guest, CreateReservationInput{
		RoomID:                 roomID,
		CheckIn:                checkIn,
		CheckOut:               checkOut,
		GuestCount:             2,
		TotalPrice:             &total,
		IdentificationDocument: uuid.New(),
	})
	require.NoError(t, err)
	return res
}

func jan(day int) time.Time {
	return time.Date(2030, time.January, day, 14, 0, 0, 0, time.UTC)
}

func price(v float64) *float64 {
	return &v
}
