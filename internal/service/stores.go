package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/hotel_manager/internal/model"
)

// Контракты хранилищ. GetByID и LockByID возвращают nil, nil, если запись не найдена.
// LockByID внутри транзакции блокирует строку до её завершения.

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type RoomStore interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id int64) (*model.Room, error)
	LockByID(ctx context.Context, id int64) (*model.Room, error)
	List(ctx context.Context, filter model.RoomFilter) ([]*model.Room, error)
	Update(ctx context.Context, room *model.Room) error
	UpdateStatus(ctx context.Context, id int64, status model.RoomStatus) error
}

type BookingStore interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	LockByID(ctx context.Context, id int64) (*model.Booking, error)
	Update(ctx context.Context, booking *model.Booking) error
	List(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)
	// FindOverlapping брони в блокирующих статусах, пересекающие q.Stay
	FindOverlapping(ctx context.Context, q model.ClaimQuery) ([]*model.Booking, error)
}

type ReservationStore interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	LockByID(ctx context.Context, id int64) (*model.Reservation, error)
	Update(ctx context.Context, reservation *model.Reservation) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter model.ReservationFilter) ([]*model.Reservation, error)
	// FindOverlapping подтверждённые и ещё не истёкшие pending резервы, пересекающие q.Stay
	FindOverlapping(ctx context.Context, q model.ClaimQuery) ([]*model.Reservation, error)
	// ExpireStale переводит просроченные pending резервы в expired и возвращает их
	ExpireStale(ctx context.Context, now time.Time) ([]*model.Reservation, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
}
