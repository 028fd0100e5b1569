package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/repository/base"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateBookingInput struct {
	RoomID                 int64      `json:"room_id" validate:"required,gt=0"`
	CheckIn                time.Time  `json:"check_in_date" validate:"required"`
	CheckOut               time.Time  `json:"check_out_date" validate:"required,gtfield=CheckIn"`
	Adults                 int        `json:"adults" validate:"min=1,max=10"`
	Children               int        `json:"children" validate:"min=0,max=5"`
	TotalPrice             *float64   `json:"total_price" validate:"omitempty,gte=0"`
	SpecialRequests        string     `json:"special_requests" validate:"max=1000"`
	IdentificationDocument *uuid.UUID `json:"identification_document"`
}

// UpdateBookingInput допустимые для персонала изменения, nil поля не меняются
type UpdateBookingInput struct {
	Status             *model.BookingStatus `json:"status"`
	IsPaid             *bool                `json:"is_paid"`
	PaymentMethod      *string              `json:"payment_method" validate:"omitempty,max=50"`
	PaymentReference   *string              `json:"payment_reference" validate:"omitempty,max=255"`
	PaymentResult      json.RawMessage      `json:"payment_result"`
	SpecialRequests    *string              `json:"special_requests" validate:"omitempty,max=1000"`
	InternalNote       string               `json:"internal_note" validate:"max=2000"`
	CancellationReason string               `json:"cancellation_reason" validate:"max=500"`
}

type BookingService struct {
	tx           TxManager
	rooms        RoomStore
	bookings     BookingStore
	users        UserStore
	availability *AvailabilityEngine
	roomState    *RoomStateManager
	notifier     Notifier
	logger       *zap.Logger
	now          func() time.Time
}

func NewBookingService(
	tx TxManager,
	rooms RoomStore,
	bookings BookingStore,
	users UserStore,
	availability *AvailabilityEngine,
	roomState *RoomStateManager,
	notifier Notifier,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		tx:           tx,
		rooms:        rooms,
		bookings:     bookings,
		users:        users,
		availability: availability,
		roomState:    roomState,
		notifier:     notifier,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateBooking создаёт бронь в статусе pending от имени гостя p
func (s *BookingService) CreateBooking(ctx context.Context, p model.Principal, in CreateBookingInput) (*model.Booking, error) {
	now := s.now()
	stay := model.NewStay(in.CheckIn, in.CheckOut)

	verr := validateInput(in)
	if !in.CheckIn.IsZero() && !stay.CheckIn.After(now) {
		verr.Add("check_in_date", "must be in the future")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	guests := model.Guests{Adults: in.Adults, Children: in.Children}
	var booking *model.Booking

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		guest, err := s.users.GetByID(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("get guest: %w", err)
		}
		if guest == nil {
			return notFound("guest", p.ID)
		}

		// Блокировка номера сериализует все заявки на него до конца транзакции
		room, err := s.rooms.LockByID(ctx, in.RoomID)
		if err != nil {
			return fmt.Errorf("lock room: %w", err)
		}
		if room == nil {
			return notFound("room", in.RoomID)
		}
		if err := checkBookable(room, guests); err != nil {
			return err
		}

		if err := s.availability.EnsureAvailable(ctx, model.ClaimQuery{RoomID: room.ID, Stay: stay, Now: now}); err != nil {
			return err
		}

		total := room.PricePerNight * float64(stay.Nights())
		if in.TotalPrice != nil {
			total = *in.TotalPrice
		}

		booking = &model.Booking{
			RoomID:                 room.ID,
			GuestID:                p.ID,
			Stay:                   stay,
			Guests:                 guests,
			TotalPrice:             total,
			Status:                 model.BookingStatusPending,
			SpecialRequests:        in.SpecialRequests,
			IdentificationDocument: in.IdentificationDocument,
			IsPaid:                 false,
		}

		if err := s.bookings.Create(ctx, booking); err != nil {
			return s.storeError("create booking", room.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("room_id", booking.RoomID),
		zap.Int64("guest_id", booking.GuestID),
		zap.Time("check_in", booking.Stay.CheckIn),
		zap.Time("check_out", booking.Stay.CheckOut),
	)
	s.publish(ctx, model.EventBookingCreated, booking, p.ID, 0)

	return booking, nil
}

// checkBookable номер активен и вмещает гостей
func checkBookable(room *model.Room, guests model.Guests) error {
	if !room.IsActive {
		return invalid("room_id", "room is not active")
	}

	verr := &ValidationError{}
	if guests.Adults > room.Capacity.Adults {
		verr.Add("adults", fmt.Sprintf("room allows at most %d adults", room.Capacity.Adults))
	}
	if guests.Total() > room.Capacity.Total() {
		verr.Add("guests", fmt.Sprintf("room allows at most %d guests", room.Capacity.Total()))
	}
	return verr.OrNil()
}

// GetBooking доступна владельцу и персоналу
func (s *BookingService) GetBooking(ctx context.Context, p model.Principal, id int64) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, notFound("booking", id)
	}
	if !p.IsStaff() && !p.Owns(booking.GuestID) {
		return nil, forbidden("get booking")
	}
	return booking, nil
}

// ListBookings гость видит только свои брони
func (s *BookingService) ListBookings(ctx context.Context, p model.Principal, filter model.BookingFilter) ([]*model.Booking, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, invalid("status", "unknown booking status")
	}
	if !p.IsStaff() {
		filter.GuestID = p.ID
	}

	bookings, err := s.bookings.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// UpdateBooking изменение брони персоналом: статус, оплата, пожелания, служебные заметки
func (s *BookingService) UpdateBooking(ctx context.Context, p model.Principal, id int64, in UpdateBookingInput) (*model.Booking, error) {
	if !p.IsStaff() {
		return nil, forbidden("update booking")
	}

	verr := validateInput(in)
	if in.Status != nil && !in.Status.IsValid() {
		verr.Add("status", "unknown booking status")
	}
	if len(in.PaymentResult) > 0 && !json.Valid(in.PaymentResult) {
		verr.Add("payment_result", "must be valid JSON")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := s.now()
	var (
		booking *model.Booking
		from    model.BookingStatus
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.lockBooking(ctx, id)
		if err != nil {
			return err
		}
		from = booking.Status

		if in.Status != nil && *in.Status != booking.Status {
			if err := s.transition(ctx, booking, *in.Status, p.ID, now); err != nil {
				return err
			}
			if *in.Status == model.BookingStatusCancelled {
				booking.CancellationReason = in.CancellationReason
			}
		}

		if in.IsPaid != nil {
			booking.IsPaid = *in.IsPaid
			if booking.IsPaid && booking.PaidAt == nil {
				booking.PaidAt = &now
			}
		}
		if in.PaymentMethod != nil {
			booking.PaymentMethod = *in.PaymentMethod
		}
		if in.PaymentReference != nil {
			booking.PaymentReference = *in.PaymentReference
		}
		if len(in.PaymentResult) > 0 {
			booking.PaymentResult = in.PaymentResult
		}
		if in.SpecialRequests != nil {
			booking.SpecialRequests = *in.SpecialRequests
		}
		if in.InternalNote != "" {
			booking.InternalNotes = append(booking.InternalNotes, model.InternalNote{
				Note:      in.InternalNote,
				AuthorID:  p.ID,
				CreatedAt: now,
			})
		}

		return s.save(ctx, booking, from)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking updated",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("actor_id", p.ID),
		zap.String("from", string(from)),
		zap.String("status", string(booking.Status)),
	)
	if booking.Status != from {
		s.publish(ctx, model.EventBookingStatusChanged, booking, p.ID, 0)
	}

	return booking, nil
}

// CheckInGuest заселение, только из confirmed
func (s *BookingService) CheckInGuest(ctx context.Context, p model.Principal, id int64) (*model.Booking, error) {
	return s.staffTransition(ctx, p, id, model.BookingStatusCheckedIn)
}

// CheckOutGuest выселение, только из checked_in
func (s *BookingService) CheckOutGuest(ctx context.Context, p model.Principal, id int64) (*model.Booking, error) {
	return s.staffTransition(ctx, p, id, model.BookingStatusCheckedOut)
}

// ConfirmBooking подтверждение pending брони персоналом
func (s *BookingService) ConfirmBooking(ctx context.Context, p model.Principal, id int64) (*model.Booking, error) {
	return s.staffTransition(ctx, p, id, model.BookingStatusConfirmed)
}

// staffTransition в отличие от UpdateBooking повторная установка текущего статуса считается ошибкой
func (s *BookingService) staffTransition(ctx context.Context, p model.Principal, id int64, target model.BookingStatus) (*model.Booking, error) {
	if !p.IsStaff() {
		return nil, forbidden(fmt.Sprintf("set booking %s", target))
	}

	now := s.now()
	var booking *model.Booking

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.lockBooking(ctx, id)
		if err != nil {
			return err
		}

		from := booking.Status
		if from == target {
			return bookingTransition(from, target)
		}
		if err := s.transition(ctx, booking, target, p.ID, now); err != nil {
			return err
		}
		return s.save(ctx, booking, from)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking status changed",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("room_id", booking.RoomID),
		zap.Int64("actor_id", p.ID),
		zap.String("status", string(target)),
	)
	s.publish(ctx, model.EventBookingStatusChanged, booking, p.ID, 0)

	return booking, nil
}

// CancelBooking отмена гостем своей брони. Возвращает сумму возврата,
// она же сохраняется в брони как снимок на момент отмены.
func (s *BookingService) CancelBooking(ctx context.Context, p model.Principal, id int64, reason string) (*model.Booking, float64, error) {
	if len(reason) > 500 {
		return nil, 0, invalid("cancellation_reason", "must be at most 500")
	}

	now := s.now()
	var booking *model.Booking

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.lockBooking(ctx, id)
		if err != nil {
			return err
		}
		if !p.Owns(booking.GuestID) {
			return forbidden("cancel booking")
		}

		from := booking.Status
		if !from.CanTransitionTo(model.BookingStatusCancelled) {
			return bookingTransition(from, model.BookingStatusCancelled)
		}
		if now.After(booking.Stay.CheckIn) {
			return invalid("check_in_date", "booking has already started")
		}

		if err := s.transition(ctx, booking, model.BookingStatusCancelled, p.ID, now); err != nil {
			return err
		}
		booking.CancellationReason = reason

		return s.save(ctx, booking, from)
	})
	if err != nil {
		return nil, 0, err
	}

	refund := *booking.RefundAmount

	s.logger.Info("Booking cancelled",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("guest_id", p.ID),
		zap.Float64("refund", refund),
	)
	s.publish(ctx, model.EventBookingCancelled, booking, p.ID, refund)

	return booking, refund, nil
}

func (s *BookingService) lockBooking(ctx context.Context, id int64) (*model.Booking, error) {
	booking, err := s.bookings.LockByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lock booking: %w", err)
	}
	if booking == nil {
		return nil, notFound("booking", id)
	}
	return booking, nil
}

// transition проверяет переход по таблице и применяет его к booking.
// Переход в confirmed заново проверяет доступность, исключая саму бронь.
func (s *BookingService) transition(ctx context.Context, booking *model.Booking, target model.BookingStatus, actorID int64, now time.Time) error {
	if !booking.Status.CanTransitionTo(target) {
		return bookingTransition(booking.Status, target)
	}

	if target == model.BookingStatusConfirmed {
		if _, err := s.rooms.LockByID(ctx, booking.RoomID); err != nil {
			return fmt.Errorf("lock room: %w", err)
		}
		err := s.availability.EnsureAvailable(ctx, model.ClaimQuery{
			RoomID:           booking.RoomID,
			Stay:             booking.Stay,
			ExcludeBookingID: booking.ID,
			Now:              now,
		})
		if err != nil {
			return err
		}
	}

	booking.ApplyStatus(target, actorID, now)

	if target == model.BookingStatusCancelled && booking.RefundAmount == nil {
		refund := booking.CalculateRefund(now)
		booking.RefundAmount = &refund
	}
	return nil
}

// save сохраняет бронь и синхронизирует статус номера в той же транзакции
func (s *BookingService) save(ctx context.Context, booking *model.Booking, from model.BookingStatus) error {
	if err := s.bookings.Update(ctx, booking); err != nil {
		return s.storeError("update booking", booking.RoomID, err)
	}
	if booking.Status == from {
		return nil
	}
	if err := s.roomState.Sync(ctx, booking.RoomID, booking.Status); err != nil {
		return fmt.Errorf("sync room status: %w", err)
	}
	return nil
}

// storeError переводит нарушение ограничения пересечений в ConflictError
func (s *BookingService) storeError(op string, roomID int64, err error) error {
	if errors.Is(err, base.ErrOverlap) {
		return &ConflictError{RoomID: roomID}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *BookingService) publish(ctx context.Context, typ model.EventType, b *model.Booking, actorID int64, amount float64) {
	s.notifier.Publish(ctx, model.Event{
		Type:      typ,
		RoomID:    b.RoomID,
		BookingID: b.ID,
		Status:    string(b.Status),
		ActorID:   actorID,
		Amount:    amount,
		Stay:      b.Stay,
		At:        s.now(),
	})
}
