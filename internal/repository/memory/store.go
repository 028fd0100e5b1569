// Package memory хранилище в памяти с теми же контрактами, что и postgres-репозитории.
// Используется в тестах и в режиме STORAGE=memory.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/hotel_manager/internal/model"
)

type txKey struct{}

type tables struct {
	rooms        map[int64]*model.Room
	bookings     map[int64]*model.Booking
	reservations map[int64]*model.Reservation
	users        map[int64]*model.User
}

func newTables() tables {
	return tables{
		rooms:        make(map[int64]*model.Room),
		bookings:     make(map[int64]*model.Booking),
		reservations: make(map[int64]*model.Reservation),
		users:        make(map[int64]*model.User),
	}
}

// clone копирует таблицы; сами записи неизменяемы, так как наружу отдаются копии
func (t tables) clone() tables {
	c := newTables()
	for k, v := range t.rooms {
		c.rooms[k] = v
	}
	for k, v := range t.bookings {
		c.bookings[k] = v
	}
	for k, v := range t.reservations {
		c.reservations[k] = v
	}
	for k, v := range t.users {
		c.users[k] = v
	}
	return c
}

// sequences счётчики ID по таблицам, как BIGSERIAL; откат транзакции их не возвращает
type sequences struct {
	rooms        int64
	bookings     int64
	reservations int64
	users        int64
}

type Store struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	data  tables
	seq   sequences
	clock func() time.Time
}

func New() *Store {
	return &Store{
		data:  newTables(),
		clock: func() time.Time { return time.Now().UTC() },
	}
}

// SetClock подменяет часы для created_at/updated_at
func (s *Store) SetClock(clock func() time.Time) {
	s.clock = clock
}

func next(counter *int64) int64 {
	*counter++
	return *counter
}

// WithinTx выполняет fn эксклюзивно; при ошибке все изменения откатываются
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(bool); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}

	return nil
}

// autocommit запись вне транзакции ждёт открытую транзакцию, иначе её откат
// восстановит снимок поверх этой записи
func (s *Store) autocommit(ctx context.Context) func() {
	if _, ok := ctx.Value(txKey{}).(bool); ok {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

func (s *Store) Rooms() *RoomRepository {
	return &RoomRepository{s: s}
}

func (s *Store) Bookings() *BookingRepository {
	return &BookingRepository{s: s}
}

func (s *Store) Reservations() *ReservationRepository {
	return &ReservationRepository{s: s}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

func cloneRoom(r *model.Room) *model.Room {
	c := *r
	c.Amenities = append([]string(nil), r.Amenities...)
	return &c
}

func cloneBooking(b *model.Booking) *model.Booking {
	c := *b
	c.InternalNotes = append([]model.InternalNote(nil), b.InternalNotes...)
	if b.PaymentResult != nil {
		c.PaymentResult = append([]byte(nil), b.PaymentResult...)
	}
	return &c
}

func cloneReservation(r *model.Reservation) *model.Reservation {
	c := *r
	return &c
}

func cloneUser(u *model.User) *model.User {
	c := *u
	return &c
}
