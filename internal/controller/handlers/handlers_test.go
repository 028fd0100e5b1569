package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/repository/memory"
	"github.com/Freeeeeet/hotel_manager/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	staffTelegramID   int64 = 100
	guestTelegramID   int64 = 200
	unknownTelegramID int64 = 300
)

type fixture struct {
	h            *Handlers
	rooms        *service.RoomService
	bookings     *service.BookingService
	reservations *service.ReservationService

	admin model.Principal
	guest model.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	logger := zap.NewNop()

	availability := service.NewAvailabilityEngine(store.Bookings(), store.Reservations())
	roomState := service.NewRoomStateManager(store.Rooms(), logger)
	notifier := service.NopNotifier()

	f := &fixture{
		rooms:        service.NewRoomService(store.Rooms(), availability, logger),
		bookings:     service.NewBookingService(store, store.Rooms(), store.Bookings(), store.Users(), availability, roomState, notifier, logger),
		reservations: service.NewReservationService(store, store.Rooms(), store.Bookings(), store.Reservations(), store.Users(), availability, roomState, notifier, logger),
	}
	users := service.NewUserService(store.Users(), logger)
	f.h = NewHandlers(users, f.rooms, f.bookings, f.reservations, logger)

	create := func(email string, role model.Role, telegramID *int64) model.Principal {
		u := &model.User{Email: email, FullName: email, Role: role, TelegramID: telegramID}
		require.NoError(t, store.Users().Create(context.Background(), u))
		return u.Principal()
	}

	staffTG, guestTG := staffTelegramID, guestTelegramID
	f.admin = create("admin@example.com", model.RoleAdmin, nil)
	create("staff@example.com", model.RoleStaff, &staffTG)
	f.guest = create("guest@example.com", model.RoleGuest, &guestTG)

	return f
}

func day(n int) time.Time {
	return time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, n).Add(14 * time.Hour)
}

func (f *fixture) room(t *testing.T) *model.Room {
	t.Helper()

	room, err := f.rooms.CreateRoom(context.Background(), f.admin, service.CreateRoomInput{
		Number:        "101",
		Type:          model.RoomTypeDouble,
		PricePerNight: 1000,
		Adults:        2,
		Children:      1,
	})
	require.NoError(t, err)
	return room
}

func (f *fixture) book(t *testing.T, roomID int64, from, to int) *model.Booking {
	t.Helper()

	b, err := f.bookings.CreateBooking(context.Background(), f.guest, service.CreateBookingInput{
		RoomID:   roomID,
		CheckIn:  day(from),
		CheckOut: day(to),
		Adults:   2,
	})
	require.NoError(t, err)
	return b
}

func callbacks(r Reply) []string {
	if r.Markup == nil {
		return nil
	}
	var data []string
	for _, row := range r.Markup.InlineKeyboard {
		for _, btn := range row {
			data = append(data, btn.CallbackData)
		}
	}
	return data
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		cmd  string
		args []string
	}{
		{"/confirm 5", "/confirm", []string{"5"}},
		{"/Confirm@HotelStaffBot  #5 ", "/confirm", []string{"#5"}},
		{"/pending", "/pending", []string{}},
		{"hello", "", nil},
		{"", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cmd, args := ParseCommand(tt.in)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestParseCallback(t *testing.T) {
	action, id, err := ParseCallback("bk_confirm:42")
	require.NoError(t, err)
	assert.Equal(t, ConfirmBooking, action)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"bk_confirm", "bk_confirm:", "bk_confirm:x", "rs_convert:-1"} {
		_, _, err := ParseCallback(bad)
		assert.Error(t, err, bad)
	}
}

func TestExecuteRequiresStaff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Contains(t, f.h.Execute(ctx, unknownTelegramID, "/pending").Text, "не привязан")
	assert.Contains(t, f.h.Execute(ctx, guestTelegramID, "/pending").Text, "только персоналу")
	assert.Contains(t, f.h.Execute(ctx, guestTelegramID, "/help").Text, "/pending")
	assert.Contains(t, f.h.Execute(ctx, unknownTelegramID, "/start").Text, "300")
	assert.Contains(t, f.h.Execute(ctx, staffTelegramID, "/start").Text, "staff@example.com")
	assert.Contains(t, f.h.Execute(ctx, staffTelegramID, "/confirm").Text, "Укажите ID")
	assert.Contains(t, f.h.Execute(ctx, staffTelegramID, "/teleport 1").Text, "Неизвестная команда")
}

func TestBookingCommands(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.room(t)
	b := f.book(t, room.ID, 10, 12)

	reply := f.h.Execute(ctx, staffTelegramID, "/pending")
	assert.Contains(t, reply.Text, "1 бронь")
	assert.Contains(t, callbacks(reply), "bk_confirm:1")

	reply = f.h.Execute(ctx, staffTelegramID, "/checkin 1")
	assert.Contains(t, reply.Text, "Нельзя перевести")

	reply = f.h.ExecuteCallback(ctx, staffTelegramID, ConfirmBooking+"1")
	assert.Contains(t, reply.Text, "Подтверждена")
	assert.Equal(t, []string{"bk_checkin:1"}, callbacks(reply))

	got, err := f.bookings.GetBooking(ctx, f.guest, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, got.Status)

	reply = f.h.Execute(ctx, staffTelegramID, "/pending")
	assert.Contains(t, reply.Text, "Нет броней")

	reply = f.h.Execute(ctx, staffTelegramID, "/booking 99")
	assert.Contains(t, reply.Text, "Не найдено")

	reply = f.h.ExecuteCallback(ctx, guestTelegramID, CheckInBooking+"1")
	assert.Contains(t, reply.Text, "только персоналу")
}

func TestAvailabilityCommand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.room(t)
	b := f.book(t, room.ID, 10, 12)
	_, err := f.bookings.ConfirmBooking(ctx, f.admin, b.ID)
	require.NoError(t, err)

	from, to := day(11).Format(time.DateOnly), day(13).Format(time.DateOnly)
	reply := f.h.Execute(ctx, staffTelegramID, "/availability 1 "+from+" "+to)
	assert.Contains(t, reply.Text, "занят")
	assert.Contains(t, reply.Text, "бронь #1")

	from, to = day(13).Format(time.DateOnly), day(15).Format(time.DateOnly)
	reply = f.h.Execute(ctx, staffTelegramID, "/availability 1 "+from+" "+to)
	assert.Contains(t, reply.Text, "свободен")

	reply = f.h.Execute(ctx, staffTelegramID, "/availability 1 tomorrow")
	assert.Contains(t, reply.Text, "Формат")
}

func TestConvertCommand(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	room := f.room(t)

	res, err := f.reservations.CreateReservation(ctx, f.guest, service.CreateReservationInput{
		RoomID:                 room.ID,
		CheckIn:                day(20),
		CheckOut:               day(22),
		GuestCount:             2,
		IdentificationDocument: uuid.New(),
	})
	require.NoError(t, err)

	reply := f.h.Execute(ctx, staffTelegramID, "/convert 1")
	assert.Contains(t, reply.Text, "Нельзя перевести")

	_, err = f.reservations.ConfirmReservation(ctx, f.guest, res.ID, service.ConfirmReservationInput{PaymentMethod: "card"})
	require.NoError(t, err)

	reply = f.h.Execute(ctx, staffTelegramID, "/pending")
	assert.Contains(t, callbacks(reply), "rs_convert:1")

	reply = f.h.ExecuteCallback(ctx, staffTelegramID, ConvertReservation+"1")
	assert.Contains(t, reply.Text, "превращён в бронь")

	reply = f.h.Execute(ctx, staffTelegramID, "/convert 1")
	assert.Contains(t, reply.Text, "уже превращён")

	reply = f.h.Execute(ctx, staffTelegramID, "/reservation 1")
	assert.Contains(t, reply.Text, "Бронь #1")
	assert.Nil(t, reply.Markup)
}
