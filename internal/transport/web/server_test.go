package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/repository/memory"
	"github.com/Freeeeeet/hotel_manager/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testSecret = []byte("test-secret")

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type apiFixture struct {
	router *gin.Engine
	store  *memory.Store

	admin model.Principal
	staff model.Principal
	guest model.Principal
	other model.Principal
}

func newAPI(t *testing.T, opts Options) *apiFixture {
	t.Helper()

	store := memory.New()
	logger := zap.NewNop()

	availability := service.NewAvailabilityEngine(store.Bookings(), store.Reservations())
	roomState := service.NewRoomStateManager(store.Rooms(), logger)
	notifier := service.NopNotifier()

	svc := Services{
		Rooms:        service.NewRoomService(store.Rooms(), availability, logger),
		Bookings:     service.NewBookingService(store, store.Rooms(), store.Bookings(), store.Users(), availability, roomState, notifier, logger),
		Reservations: service.NewReservationService(store, store.Rooms(), store.Bookings(), store.Reservations(), store.Users(), availability, roomState, notifier, logger),
		Users:        service.NewUserService(store.Users(), logger),
	}

	opts.JWTSecret = testSecret
	a := &apiFixture{
		router: NewRouter(svc, opts, logger),
		store:  store,
	}

	a.admin = a.user(t, "admin@example.com", model.RoleAdmin)
	a.staff = a.user(t, "staff@example.com", model.RoleStaff)
	a.guest = a.user(t, "guest@example.com", model.RoleGuest)
	a.other = a.user(t, "other@example.com", model.RoleGuest)

	return a
}

func (a *apiFixture) user(t *testing.T, email string, role model.Role) model.Principal {
	t.Helper()

	u := &model.User{Email: email, Role: role}
	require.NoError(t, a.store.Users().Create(context.Background(), u))
	return u.Principal()
}

func (a *apiFixture) do(t *testing.T, method, path string, p *model.Principal, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if p != nil {
		token, err := IssueToken(testSecret, *p, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *apiFixture) createRoom(t *testing.T, number string) int64 {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/rooms", &a.admin, gin.H{
		"number":          number,
		"type":            "double",
		"price_per_night": 1000,
		"adults":          2,
		"children":        1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Room](t, rec).ID
}

// day полдень через n дней от сегодняшнего UTC
func day(n int) time.Time {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return today.AddDate(0, 0, n).Add(14 * time.Hour)
}

func bookingBody(roomID int64, from, to int) gin.H {
	return gin.H{
		"room_id":        roomID,
		"check_in_date":  day(from),
		"check_out_date": day(to),
		"adults":         2,
	}
}

func TestHealth(t *testing.T) {
	a := newAPI(t, Options{})

	rec := a.do(t, http.MethodGet, "/health", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestAuthRequired(t *testing.T) {
	a := newAPI(t, Options{})

	rec := a.do(t, http.MethodGet, "/api/bookings", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged, err := IssueToken([]byte("other-secret"), a.guest, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec = httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestParseToken(t *testing.T) {
	p := model.Principal{ID: 7, Role: model.RoleStaff}

	token, err := IssueToken(testSecret, p, time.Hour)
	require.NoError(t, err)

	got, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	expired, err := IssueToken(testSecret, p, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired)
	assert.Error(t, err)

	bad, err := IssueToken(testSecret, model.Principal{ID: 7, Role: "owner"}, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, bad)
	assert.Error(t, err)
}

func TestRoomEndpoints(t *testing.T) {
	a := newAPI(t, Options{})

	rec := a.do(t, http.MethodPost, "/api/rooms", &a.guest, gin.H{"number": "101", "type": "double", "adults": 2})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/rooms", &a.admin, gin.H{"number": "1 01", "type": "castle", "adults": 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[struct {
		Fields map[string][]string `json:"fields"`
	}](t, rec)
	assert.Contains(t, body.Fields, "number")
	assert.Contains(t, body.Fields, "type")
	assert.Contains(t, body.Fields, "adults")

	id := a.createRoom(t, "101")

	rec = a.do(t, http.MethodGet, fmt.Sprintf("/api/rooms/%d", id), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "101", decode[model.Room](t, rec).Number)

	rec = a.do(t, http.MethodGet, "/api/rooms/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/rooms/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPatch, fmt.Sprintf("/api/rooms/%d", id), &a.admin, gin.H{"price_per_night": 1500})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 1500, decode[model.Room](t, rec).PricePerNight, 0.001)

	rec = a.do(t, http.MethodDelete, fmt.Sprintf("/api/rooms/%d", id), &a.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[model.Room](t, rec).IsActive)

	rec = a.do(t, http.MethodGet, "/api/rooms?active=true", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Rooms []model.Room `json:"rooms"`
	}](t, rec)
	assert.Empty(t, list.Rooms)
}

func TestBookingLifecycle(t *testing.T) {
	a := newAPI(t, Options{})
	roomID := a.createRoom(t, "101")

	rec := a.do(t, http.MethodPost, "/api/bookings", &a.guest, bookingBody(roomID, 10, 15))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	booking := decode[model.Booking](t, rec)
	assert.Equal(t, model.BookingStatusPending, booking.Status)
	assert.Equal(t, a.guest.ID, booking.GuestID)

	path := fmt.Sprintf("/api/bookings/%d", booking.ID)

	rec = a.do(t, http.MethodGet, path, &a.other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPost, path+"/check-in", &a.staff, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = a.do(t, http.MethodPost, path+"/confirm", &a.guest, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPost, path+"/confirm", &a.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.BookingStatusConfirmed, decode[model.Booking](t, rec).Status)

	rec = a.do(t, http.MethodPost, "/api/bookings", &a.other, bookingBody(roomID, 12, 14))
	require.Equal(t, http.StatusConflict, rec.Code)
	conflict := decode[struct {
		Conflicts []model.OccupancyClaim `json:"conflicts"`
	}](t, rec)
	require.Len(t, conflict.Conflicts, 1)
	assert.Equal(t, model.ClaimKindBooking, conflict.Conflicts[0].Kind)
	assert.Equal(t, booking.ID, conflict.Conflicts[0].ID)

	rec = a.do(t, http.MethodPost, "/api/bookings", &a.other, bookingBody(roomID, 15, 18))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodGet, fmt.Sprintf("/api/rooms/%d/availability?check_in=%s&check_out=%s",
		roomID, day(11).Format(time.DateOnly), day(13).Format(time.DateOnly)), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	avail := decode[struct {
		Available bool `json:"available"`
	}](t, rec)
	assert.False(t, avail.Available)

	rec = a.do(t, http.MethodPost, path+"/cancel", &a.staff, gin.H{"reason": "no"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPost, path+"/cancel", &a.guest, gin.H{"reason": "plans changed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cancelled := decode[struct {
		Booking      model.Booking `json:"booking"`
		RefundAmount float64       `json:"refund_amount"`
	}](t, rec)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Booking.Status)
	assert.InDelta(t, booking.TotalPrice, cancelled.RefundAmount, 0.001)

	rec = a.do(t, http.MethodGet, "/api/bookings", &a.guest, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[struct {
		Bookings []model.Booking `json:"bookings"`
	}](t, rec)
	require.Len(t, mine.Bookings, 1)
	assert.Equal(t, booking.ID, mine.Bookings[0].ID)
}

func TestCancelWithEmptyChunkedBody(t *testing.T) {
	a := newAPI(t, Options{})
	roomID := a.createRoom(t, "101")

	rec := a.do(t, http.MethodPost, "/api/bookings", &a.guest, bookingBody(roomID, 10, 15))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	booking := decode[model.Booking](t, rec)
	path := fmt.Sprintf("/api/bookings/%d/cancel", booking.ID)

	send := func(body string) *httptest.ResponseRecorder {
		// io.NopCloser скрывает длину, запрос уходит с ContentLength -1
		req := httptest.NewRequest(http.MethodPost, path, io.NopCloser(strings.NewReader(body)))
		require.Equal(t, int64(-1), req.ContentLength)
		req.Header.Set("Content-Type", "application/json")
		token, err := IssueToken(testSecret, a.guest, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := httptest.NewRecorder()
		a.router.ServeHTTP(rec, req)
		return rec
	}

	rec = send("{")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send("")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cancelled := decode[struct {
		Booking model.Booking `json:"booking"`
	}](t, rec)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Booking.Status)
}

func TestBookingValidation(t *testing.T) {
	a := newAPI(t, Options{})
	roomID := a.createRoom(t, "101")

	rec := a.do(t, http.MethodPost, "/api/bookings", &a.guest, bookingBody(roomID, 15, 10))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[struct {
		Fields map[string][]string `json:"fields"`
	}](t, rec)
	assert.Contains(t, body.Fields, "check_out_date")

	rec = a.do(t, http.MethodPost, "/api/bookings", &a.guest, bookingBody(999, 10, 15))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString("{"))
	token, err := IssueToken(testSecret, a.guest, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReservationFlow(t *testing.T) {
	a := newAPI(t, Options{})
	roomID := a.createRoom(t, "101")

	rec := a.do(t, http.MethodPost, "/api/reservations", &a.guest, gin.H{
		"room_id":                 roomID,
		"check_in_date":           day(20),
		"check_out_date":          day(22),
		"guest_count":             2,
		"identification_document": uuid.New(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[model.Reservation](t, rec)
	assert.Equal(t, model.ReservationStatusPending, res.Status)
	assert.InDelta(t, 400, res.DepositAmount, 0.001)
	assert.Equal(t, res.CreatedAt.Add(48*time.Hour), res.ExpiresAt)

	path := fmt.Sprintf("/api/reservations/%d", res.ID)

	rec = a.do(t, http.MethodPost, "/api/bookings", &a.other, bookingBody(roomID, 21, 23))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodPost, path+"/confirm", &a.guest, gin.H{"payment_method": "card", "payment_reference": "ref-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[model.Reservation](t, rec).DepositPaid)

	rec = a.do(t, http.MethodPost, path+"/convert", &a.guest, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPost, path+"/convert", &a.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	converted := decode[struct {
		Booking     model.Booking     `json:"booking"`
		Reservation model.Reservation `json:"reservation"`
	}](t, rec)
	assert.Equal(t, model.BookingStatusConfirmed, converted.Booking.Status)
	assert.Equal(t, model.ReservationStatusConvertedToBooking, converted.Reservation.Status)
	require.NotNil(t, converted.Reservation.ConvertedToBooking)
	assert.Equal(t, converted.Booking.ID, *converted.Reservation.ConvertedToBooking)

	rec = a.do(t, http.MethodPost, path+"/convert", &a.staff, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodDelete, path, &a.other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodDelete, path, &a.guest, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodGet, fmt.Sprintf("/api/bookings/%d", converted.Booking.ID), &a.guest, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterUser(t *testing.T) {
	a := newAPI(t, Options{})

	rec := a.do(t, http.MethodPost, "/api/users", nil, gin.H{"email": "new@example.com", "full_name": "New Guest"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, model.RoleGuest, decode[model.User](t, rec).Role)

	rec = a.do(t, http.MethodPost, "/api/users", nil, gin.H{"email": "boss@example.com", "role": "staff"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/users", &a.admin, gin.H{"email": "boss@example.com", "role": "staff"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/users", nil, gin.H{"email": "new@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/me", &a.staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "staff@example.com", decode[model.User](t, rec).Email)
}

func TestCreateRateLimited(t *testing.T) {
	a := newAPI(t, Options{RateLimitPerMinute: 1, RateLimitBurst: 1})
	roomID := a.createRoom(t, "101")

	rec := a.do(t, http.MethodPost, "/api/bookings", &a.guest, bookingBody(roomID, 10, 12))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/bookings", &a.guest, bookingBody(roomID, 20, 22))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Чтение не лимитируется
	rec = a.do(t, http.MethodGet, "/api/bookings", &a.guest, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&service.ValidationError{Fields: map[string][]string{"x": {"bad"}}}, http.StatusBadRequest},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrNotFound, http.StatusNotFound},
		{&service.ConflictError{RoomID: 1}, http.StatusConflict},
		{service.ErrAlreadyConverted, http.StatusConflict},
		{service.ErrExpired, http.StatusGone},
		{&service.TransitionError{Entity: "booking", From: "pending", To: "checked_in"}, http.StatusUnprocessableEntity},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
