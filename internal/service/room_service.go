package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/repository/base"
	"go.uber.org/zap"
)

type CreateRoomInput struct {
	Number        string         `json:"number" validate:"required,max=10,roomnumber"`
	Type          model.RoomType `json:"type" validate:"required"`
	Description   string         `json:"description" validate:"max=1000"`
	PricePerNight float64        `json:"price_per_night" validate:"gte=0,lte=10000"`
	Adults        int            `json:"adults" validate:"min=1,max=10"`
	Children      int            `json:"children" validate:"min=0,ltefield=Adults"`
	Amenities     []string       `json:"amenities" validate:"max=50,dive,required,max=100"`
}

// UpdateRoomInput частичное обновление, nil поля не меняются
type UpdateRoomInput struct {
	Number        *string           `json:"number" validate:"omitempty,max=10,roomnumber"`
	Type          *model.RoomType   `json:"type"`
	Description   *string           `json:"description" validate:"omitempty,max=1000"`
	PricePerNight *float64          `json:"price_per_night" validate:"omitempty,gte=0,lte=10000"`
	Adults        *int              `json:"adults" validate:"omitempty,min=1,max=10"`
	Children      *int              `json:"children" validate:"omitempty,min=0"`
	Amenities     []string          `json:"amenities" validate:"omitempty,max=50,dive,required,max=100"`
	Status        *model.RoomStatus `json:"status"`
	IsActive      *bool             `json:"is_active"`
}

type RoomService struct {
	rooms        RoomStore
	availability *AvailabilityEngine
	logger       *zap.Logger
	now          func() time.Time
}

func NewRoomService(rooms RoomStore, availability *AvailabilityEngine, logger *zap.Logger) *RoomService {
	return &RoomService{
		rooms:        rooms,
		availability: availability,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreateRoom создаёт номер, доступно только администратору
func (s *RoomService) CreateRoom(ctx context.Context, p model.Principal, in CreateRoomInput) (*model.Room, error) {
	if !p.IsAdmin() {
		return nil, forbidden("create room")
	}

	verr := validateInput(in)
	if in.Type != "" && !in.Type.IsValid() {
		verr.Add("type", "unknown room type")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	room := &model.Room{
		Number:        in.Number,
		Type:          in.Type,
		Description:   in.Description,
		PricePerNight: in.PricePerNight,
		Capacity:      model.Capacity{Adults: in.Adults, Children: in.Children},
		Amenities:     in.Amenities,
		Status:        model.RoomStatusAvailable,
		IsActive:      true,
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		if errors.Is(err, base.ErrDuplicate) {
			return nil, invalid("number", "room number already exists")
		}
		return nil, fmt.Errorf("create room: %w", err)
	}

	s.logger.Info("Room created",
		zap.Int64("room_id", room.ID),
		zap.String("number", room.Number),
		zap.String("type", string(room.Type)),
	)

	return room, nil
}

// GetRoom получает номер по ID
func (s *RoomService) GetRoom(ctx context.Context, id int64) (*model.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return nil, notFound("room", id)
	}
	return room, nil
}

func (s *RoomService) ListRooms(ctx context.Context, filter model.RoomFilter) ([]*model.Room, error) {
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, invalid("type", "unknown room type")
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, invalid("status", "unknown room status")
	}

	rooms, err := s.rooms.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// UpdateRoom применяет частичное обновление. Ручная смена статуса нужна для
// maintenance/cleaning/out_of_order, на проверку конфликтов она не влияет.
func (s *RoomService) UpdateRoom(ctx context.Context, p model.Principal, id int64, in UpdateRoomInput) (*model.Room, error) {
	if !p.IsAdmin() {
		return nil, forbidden("update room")
	}

	verr := validateInput(in)
	if in.Type != nil && !in.Type.IsValid() {
		verr.Add("type", "unknown room type")
	}
	if in.Status != nil && !in.Status.IsValid() {
		verr.Add("status", "unknown room status")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	room, err := s.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Number != nil {
		room.Number = *in.Number
	}
	if in.Type != nil {
		room.Type = *in.Type
	}
	if in.Description != nil {
		room.Description = *in.Description
	}
	if in.PricePerNight != nil {
		room.PricePerNight = *in.PricePerNight
	}
	if in.Adults != nil {
		room.Capacity.Adults = *in.Adults
	}
	if in.Children != nil {
		room.Capacity.Children = *in.Children
	}
	if in.Amenities != nil {
		room.Amenities = in.Amenities
	}
	if in.Status != nil {
		room.Status = *in.Status
	}
	if in.IsActive != nil {
		room.IsActive = *in.IsActive
	}

	if room.Capacity.Children > room.Capacity.Adults {
		return nil, invalid("children", "must not exceed adults")
	}

	if err := s.rooms.Update(ctx, room); err != nil {
		if errors.Is(err, base.ErrDuplicate) {
			return nil, invalid("number", "room number already exists")
		}
		return nil, fmt.Errorf("update room: %w", err)
	}

	s.logger.Info("Room updated", zap.Int64("room_id", room.ID), zap.String("status", string(room.Status)))
	return room, nil
}

// DeactivateRoom снимает номер с продажи. Номера не удаляются, на них ссылаются брони.
func (s *RoomService) DeactivateRoom(ctx context.Context, p model.Principal, id int64) (*model.Room, error) {
	inactive := false
	return s.UpdateRoom(ctx, p, id, UpdateRoomInput{IsActive: &inactive})
}

// CheckAvailability возвращает конфликтующие заявки, пустой список если номер свободен
func (s *RoomService) CheckAvailability(ctx context.Context, roomID int64, checkIn, checkOut time.Time) ([]model.OccupancyClaim, error) {
	stay := model.NewStay(checkIn, checkOut)
	if !stay.Valid() {
		return nil, invalid("check_out_date", "must be after check_in_date")
	}

	if _, err := s.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}

	claims, err := s.availability.FindOverlapping(ctx, model.ClaimQuery{
		RoomID: roomID,
		Stay:   stay,
		Now:    s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("check availability: %w", err)
	}
	return claims, nil
}
