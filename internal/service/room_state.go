package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"go.uber.org/zap"
)

// RoomStateManager держит грубый статус номера в соответствии со статусами броней.
// Статус номера это кэш для витрины: конфликты проверяет только AvailabilityEngine.
type RoomStateManager struct {
	rooms  RoomStore
	logger *zap.Logger
}

func NewRoomStateManager(rooms RoomStore, logger *zap.Logger) *RoomStateManager {
	return &RoomStateManager{
		rooms:  rooms,
		logger: logger,
	}
}

// Sync применяет правило: cancelled/completed/checked_out -> available,
// confirmed/checked_in -> occupied, остальные статусы номер не трогают.
// Вызывается внутри транзакции перехода брони.
func (m *RoomStateManager) Sync(ctx context.Context, roomID int64, status model.BookingStatus) error {
	target, ok := model.RoomStatusForBooking(status)
	if !ok {
		return nil
	}

	room, err := m.rooms.GetByID(ctx, roomID)
	if err != nil {
		return fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return notFound("room", roomID)
	}
	if room.Status == target {
		return nil
	}

	if err := m.rooms.UpdateStatus(ctx, roomID, target); err != nil {
		return fmt.Errorf("update room status: %w", err)
	}

	m.logger.Debug("Room status synced",
		zap.Int64("room_id", roomID),
		zap.String("from", string(room.Status)),
		zap.String("to", string(target)),
		zap.String("booking_status", string(status)),
	)

	return nil
}
