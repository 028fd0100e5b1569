package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/repository/base"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateReservationInput struct {
	RoomID                 int64     `json:"room_id" validate:"required,gt=0"`
	CheckIn                time.Time `json:"check_in_date" validate:"required"`
	CheckOut               time.Time `json:"check_out_date" validate:"required,gtfield=CheckIn"`
	GuestCount             int       `json:"guest_count" validate:"min=1,max=20"`
	TotalPrice             *float64  `json:"total_price" validate:"omitempty,gte=0"`
	IdentificationDocument uuid.UUID `json:"identification_document"`
	SpecialRequests        string    `json:"special_requests" validate:"max=1000"`
}

type ConfirmReservationInput struct {
	PaymentMethod    string `json:"payment_method" validate:"max=50"`
	PaymentReference string `json:"payment_reference" validate:"max=255"`
}

type ReservationService struct {
	tx           TxManager
	rooms        RoomStore
	bookings     BookingStore
	reservations ReservationStore
	users        UserStore
	availability *AvailabilityEngine
	roomState    *RoomStateManager
	notifier     Notifier
	logger       *zap.Logger
	now          func() time.Time
}

func NewReservationService(
	tx TxManager,
	rooms RoomStore,
	bookings BookingStore,
	reservations ReservationStore,
	users UserStore,
	availability *AvailabilityEngine,
	roomState *RoomStateManager,
	notifier Notifier,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		tx:           tx,
		rooms:        rooms,
		bookings:     bookings,
		reservations: reservations,
		users:        users,
		availability: availability,
		roomState:    roomState,
		notifier:     notifier,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateReservation создаёт резерв на 48 часов. Документ гостя должен быть загружен заранее.
// Заезд допускается в текущий день (UTC), в отличие от брони.
func (s *ReservationService) CreateReservation(ctx context.Context, p model.Principal, in CreateReservationInput) (*model.Reservation, error) {
	// Срок считается от created_at с точностью хранилища
	now := s.now().Truncate(time.Microsecond)
	stay := model.NewStay(in.CheckIn, in.CheckOut)

	verr := validateInput(in)
	if in.IdentificationDocument == uuid.Nil {
		verr.Add("identification_document", "is required")
	}
	if !in.CheckIn.IsZero() && utcDay(stay.CheckIn).Before(utcDay(now)) {
		verr.Add("check_in_date", "must not be in the past")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	var res *model.Reservation

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		guest, err := s.users.GetByID(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("get guest: %w", err)
		}
		if guest == nil {
			return notFound("guest", p.ID)
		}

		room, err := s.rooms.LockByID(ctx, in.RoomID)
		if err != nil {
			return fmt.Errorf("lock room: %w", err)
		}
		if room == nil {
			return notFound("room", in.RoomID)
		}
		if !room.IsActive {
			return invalid("room_id", "room is not active")
		}
		if in.GuestCount > room.Capacity.Total() {
			return invalid("guest_count", fmt.Sprintf("room allows at most %d guests", room.Capacity.Total()))
		}

		if err := s.availability.EnsureAvailable(ctx, model.ClaimQuery{RoomID: room.ID, Stay: stay, Now: now}); err != nil {
			return err
		}

		total := room.PricePerNight * float64(stay.Nights())
		if in.TotalPrice != nil {
			total = *in.TotalPrice
		}

		res = &model.Reservation{
			RoomID:                 room.ID,
			GuestID:                p.ID,
			Stay:                   stay,
			GuestCount:             in.GuestCount,
			TotalPrice:             total,
			DepositAmount:          model.DepositFor(total),
			IdentificationDocument: in.IdentificationDocument,
			SpecialRequests:        in.SpecialRequests,
			Status:                 model.ReservationStatusPending,
			CreatedAt:              now,
			ExpiresAt:              model.ExpiresAtFor(now),
		}

		if err := s.reservations.Create(ctx, res); err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reservation created",
		zap.Int64("reservation_id", res.ID),
		zap.Int64("room_id", res.RoomID),
		zap.Int64("guest_id", res.GuestID),
		zap.Float64("deposit", res.DepositAmount),
		zap.Time("expires_at", res.ExpiresAt),
	)
	s.publish(ctx, model.EventReservationCreated, res, p.ID, res.DepositAmount)

	return res, nil
}

// ConfirmReservation фиксирует оплату депозита. Просроченный резерв
// сохраняется как expired, а подтверждение отклоняется с ErrExpired.
func (s *ReservationService) ConfirmReservation(ctx context.Context, p model.Principal, id int64, in ConfirmReservationInput) (*model.Reservation, error) {
	if err := validateInput(in).OrNil(); err != nil {
		return nil, err
	}

	now := s.now()
	var (
		res     *model.Reservation
		expired bool
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.lockReservation(ctx, id)
		if err != nil {
			return err
		}
		if !p.IsStaff() && !p.Owns(res.GuestID) {
			return forbidden("confirm reservation")
		}

		if res.Status == model.ReservationStatusConfirmed {
			return reservationTransition(res.Status, model.ReservationStatusConfirmed)
		}
		if res.ExpireIfDue(now) {
			expired = true
			return s.update(ctx, res)
		}
		if !res.Status.CanTransitionTo(model.ReservationStatusConfirmed) {
			return reservationTransition(res.Status, model.ReservationStatusConfirmed)
		}

		res.Status = model.ReservationStatusConfirmed
		res.DepositPaid = true
		res.DepositPaidAt = &now
		if in.PaymentMethod != "" {
			res.PaymentMethod = in.PaymentMethod
		}
		if in.PaymentReference != "" {
			res.PaymentReference = in.PaymentReference
		}

		return s.update(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	if expired {
		s.expiredLog(res)
		s.publish(ctx, model.EventReservationExpired, res, 0, 0)
		return nil, fmt.Errorf("confirm reservation %d: %w", id, ErrExpired)
	}

	s.logger.Info("Reservation confirmed",
		zap.Int64("reservation_id", res.ID),
		zap.Int64("actor_id", p.ID),
		zap.Float64("deposit", res.DepositAmount),
	)
	s.publish(ctx, model.EventReservationConfirmed, res, p.ID, res.DepositAmount)

	return res, nil
}

// CancelReservation отмена владельцем. Возврат равен депозиту, если он был внесён.
func (s *ReservationService) CancelReservation(ctx context.Context, p model.Principal, id int64, reason string) (*model.Reservation, float64, error) {
	if len(reason) > 500 {
		return nil, 0, invalid("cancellation_reason", "must be at most 500")
	}

	now := s.now()
	var (
		res     *model.Reservation
		expired bool
	)

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.lockReservation(ctx, id)
		if err != nil {
			return err
		}
		if !p.Owns(res.GuestID) {
			return forbidden("cancel reservation")
		}

		if res.ExpireIfDue(now) {
			expired = true
			return s.update(ctx, res)
		}
		if !res.Status.CanTransitionTo(model.ReservationStatusCancelled) {
			return reservationTransition(res.Status, model.ReservationStatusCancelled)
		}

		res.Status = model.ReservationStatusCancelled
		res.CancelledAt = &now
		res.CancelledBy = &p.ID
		res.CancellationReason = reason

		return s.update(ctx, res)
	})
	if err != nil {
		return nil, 0, err
	}

	if expired {
		s.expiredLog(res)
		s.publish(ctx, model.EventReservationExpired, res, 0, 0)
		return nil, 0, fmt.Errorf("cancel reservation %d: %w", id, ErrExpired)
	}

	refund := res.Refund()

	s.logger.Info("Reservation cancelled",
		zap.Int64("reservation_id", res.ID),
		zap.Int64("guest_id", p.ID),
		zap.Float64("refund", refund),
	)
	s.publish(ctx, model.EventReservationCancelled, res, p.ID, refund)

	return res, refund, nil
}

// GetReservation доступен владельцу и персоналу, просрочка применяется при чтении
func (s *ReservationService) GetReservation(ctx context.Context, p model.Principal, id int64) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if res == nil {
		return nil, notFound("reservation", id)
	}
	if !p.IsStaff() && !p.Owns(res.GuestID) {
		return nil, forbidden("get reservation")
	}

	return s.expireLazily(ctx, res)
}

func (s *ReservationService) ListReservations(ctx context.Context, p model.Principal, filter model.ReservationFilter) ([]*model.Reservation, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, invalid("status", "unknown reservation status")
	}
	if !p.IsStaff() {
		filter.GuestID = p.ID
	}

	list, err := s.reservations.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	result := make([]*model.Reservation, 0, len(list))
	for _, res := range list {
		res, err = s.expireLazily(ctx, res)
		if err != nil {
			return nil, err
		}
		// Фильтр по pending не должен возвращать только что истёкшие
		if filter.Status != "" && res.Status != filter.Status {
			continue
		}
		result = append(result, res)
	}
	return result, nil
}

// DeleteReservation удаление администратором или владельцем. Бронь, полученная
// конвертацией, остаётся.
func (s *ReservationService) DeleteReservation(ctx context.Context, p model.Principal, id int64) error {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get reservation: %w", err)
	}
	if res == nil {
		return notFound("reservation", id)
	}
	if !p.IsAdmin() && !p.Owns(res.GuestID) {
		return forbidden("delete reservation")
	}

	if err := s.reservations.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}

	s.logger.Info("Reservation deleted", zap.Int64("reservation_id", id), zap.Int64("actor_id", p.ID))
	return nil
}

// ExpireStale фоновая сверка: переводит все просроченные pending резервы в expired
func (s *ReservationService) ExpireStale(ctx context.Context) (int, error) {
	expired, err := s.reservations.ExpireStale(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("expire stale reservations: %w", err)
	}

	for _, res := range expired {
		s.expiredLog(res)
		s.publish(ctx, model.EventReservationExpired, res, 0, 0)
	}
	return len(expired), nil
}

// expireLazily сохраняет логическую просрочку, если статус в хранилище отстал
func (s *ReservationService) expireLazily(ctx context.Context, res *model.Reservation) (*model.Reservation, error) {
	now := s.now()
	if !res.IsExpired(now) {
		return res, nil
	}

	var changed bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.lockReservation(ctx, res.ID)
		if err != nil {
			return err
		}
		res = locked
		if !res.ExpireIfDue(now) {
			return nil
		}
		changed = true
		return s.update(ctx, res)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.expiredLog(res)
		s.publish(ctx, model.EventReservationExpired, res, 0, 0)
	}
	return res, nil
}

func (s *ReservationService) lockReservation(ctx context.Context, id int64) (*model.Reservation, error) {
	res, err := s.reservations.LockByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lock reservation: %w", err)
	}
	if res == nil {
		return nil, notFound("reservation", id)
	}
	return res, nil
}

func (s *ReservationService) update(ctx context.Context, res *model.Reservation) error {
	if err := s.reservations.Update(ctx, res); err != nil {
		if errors.Is(err, base.ErrDuplicate) {
			return fmt.Errorf("update reservation %d: %w", res.ID, ErrAlreadyConverted)
		}
		return fmt.Errorf("update reservation: %w", err)
	}
	return nil
}

func (s *ReservationService) expiredLog(res *model.Reservation) {
	s.logger.Info("Reservation expired",
		zap.Int64("reservation_id", res.ID),
		zap.Int64("room_id", res.RoomID),
		zap.Time("expires_at", res.ExpiresAt),
	)
}

func (s *ReservationService) publish(ctx context.Context, typ model.EventType, res *model.Reservation, actorID int64, amount float64) {
	s.notifier.Publish(ctx, model.Event{
		Type:          typ,
		RoomID:        res.RoomID,
		ReservationID: res.ID,
		BookingID:     derefID(res.ConvertedToBooking),
		Status:        string(res.Status),
		ActorID:       actorID,
		Amount:        amount,
		Stay:          res.Stay,
		At:            s.now(),
	})
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
