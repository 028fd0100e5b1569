package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const roomColumns = `id, number, type, description, price_per_night, capacity_adults, capacity_children,
	amenities, status, is_active, created_at, updated_at`

type RoomRepository struct {
	*base.Repository
}

func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{Repository: base.NewRepository(pool)}
}

func scanRoom(row pgx.Row) (*model.Room, error) {
	var room model.Room
	err := row.Scan(
		&room.ID,
		&room.Number,
		&room.Type,
		&room.Description,
		&room.PricePerNight,
		&room.Capacity.Adults,
		&room.Capacity.Children,
		&room.Amenities,
		&room.Status,
		&room.IsActive,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Create создаёт номер
func (r *RoomRepository) Create(ctx context.Context, room *model.Room) error {
	query := `
		INSERT INTO rooms (number, type, description, price_per_night, capacity_adults, capacity_children,
			amenities, status, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		room.Number,
		room.Type,
		room.Description,
		room.PricePerNight,
		room.Capacity.Adults,
		room.Capacity.Children,
		room.Amenities,
		room.Status,
		room.IsActive,
	).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create room: %w", base.MapError(err))
	}

	return nil
}

// GetByID получает номер по ID
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	room, err := scanRoom(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get room by id: %w", err)
	}

	return room, nil
}

// LockByID получает номер и блокирует строку до конца транзакции.
// Через эту блокировку сериализуются все заявки на один номер.
func (r *RoomRepository) LockByID(ctx context.Context, id int64) (*model.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1 FOR UPDATE`

	room, err := scanRoom(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock room: %w", err)
	}

	return room, nil
}

// List получает номера по фильтру
func (r *RoomRepository) List(ctx context.Context, filter model.RoomFilter) ([]*model.Room, error) {
	var (
		conds []string
		args  []any
	)

	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.OnlyActive {
		conds = append(conds, "is_active")
	}
	if filter.MinCapacity > 0 {
		args = append(args, filter.MinCapacity)
		conds = append(conds, fmt.Sprintf("capacity_adults + capacity_children >= $%d", len(args)))
	}

	query := `SELECT ` + roomColumns + ` FROM rooms`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY number`

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*model.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

// Update обновляет изменяемые поля номера
func (r *RoomRepository) Update(ctx context.Context, room *model.Room) error {
	query := `
		UPDATE rooms
		SET number = $1, type = $2, description = $3, price_per_night = $4, capacity_adults = $5,
			capacity_children = $6, amenities = $7, status = $8, is_active = $9, updated_at = now()
		WHERE id = $10
		RETURNING updated_at
	`

	err := r.QueryRow(
		ctx, query,
		room.Number,
		room.Type,
		room.Description,
		room.PricePerNight,
		room.Capacity.Adults,
		room.Capacity.Children,
		room.Amenities,
		room.Status,
		room.IsActive,
		room.ID,
	).Scan(&room.UpdatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return fmt.Errorf("room %d not found", room.ID)
		}
		return fmt.Errorf("update room: %w", base.MapError(err))
	}

	return nil
}

// UpdateStatus обновляет статус номера
func (r *RoomRepository) UpdateStatus(ctx context.Context, id int64, status model.RoomStatus) error {
	query := `
		UPDATE rooms
		SET status = $1, updated_at = now()
		WHERE id = $2
	`

	affected, err := r.ExecAffected(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update room status: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("room %d not found", id)
	}

	return nil
}
