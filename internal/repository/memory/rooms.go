package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/repository/base"
)

type RoomRepository struct {
	s *Store
}

func (r *RoomRepository) Create(ctx context.Context, room *model.Room) error {
	defer r.s.autocommit(ctx)()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.data.rooms {
		if existing.Number == room.Number {
			return fmt.Errorf("create room: rooms_number_key: %w", base.ErrDuplicate)
		}
	}

	now := r.s.clock()
	room.ID = next(&r.s.seq.rooms)
	room.CreatedAt = now
	room.UpdatedAt = now
	r.s.data.rooms[room.ID] = cloneRoom(room)

	return nil
}

func (r *RoomRepository) GetByID(_ context.Context, id int64) (*model.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	room, ok := r.s.data.rooms[id]
	if !ok {
		return nil, nil
	}
	return cloneRoom(room), nil
}

// LockByID в памяти эквивалентен GetByID: транзакции и так выполняются по одной
func (r *RoomRepository) LockByID(ctx context.Context, id int64) (*model.Room, error) {
	return r.GetByID(ctx, id)
}

func (r *RoomRepository) List(_ context.Context, filter model.RoomFilter) ([]*model.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var rooms []*model.Room
	for _, room := range r.s.data.rooms {
		if filter.Match(room) {
			rooms = append(rooms, cloneRoom(room))
		}
	}

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Number < rooms[j].Number })
	return rooms, nil
}

func (r *RoomRepository) Update(ctx context.Context, room *model.Room) error {
	defer r.s.autocommit(ctx)()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.data.rooms[room.ID]; !ok {
		return fmt.Errorf("room %d not found", room.ID)
	}
	for _, existing := range r.s.data.rooms {
		if existing.ID != room.ID && existing.Number == room.Number {
			return fmt.Errorf("update room: rooms_number_key: %w", base.ErrDuplicate)
		}
	}

	room.UpdatedAt = r.s.clock()
	r.s.data.rooms[room.ID] = cloneRoom(room)
	return nil
}

func (r *RoomRepository) UpdateStatus(ctx context.Context, id int64, status model.RoomStatus) error {
	defer r.s.autocommit(ctx)()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	room, ok := r.s.data.rooms[id]
	if !ok {
		return fmt.Errorf("room %d not found", id)
	}

	updated := cloneRoom(room)
	updated.Status = status
	updated.UpdatedAt = r.s.clock()
	r.s.data.rooms[id] = updated
	return nil
}
