package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/repository/base"
	"go.uber.org/zap"
)

type RegisterUserInput struct {
	Email      string     `json:"email" validate:"required,email,max=255"`
	FullName   string     `json:"full_name" validate:"max=255"`
	Role       model.Role `json:"role" validate:"omitempty,oneof=guest staff admin"`
	TelegramID *int64     `json:"telegram_id" validate:"omitempty,gt=0"`
}

type UserService struct {
	users  UserStore
	logger *zap.Logger
}

func NewUserService(users UserStore, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// RegisterUser создаёт пользователя. Учётные записи персонала заводит только администратор.
func (s *UserService) RegisterUser(ctx context.Context, p model.Principal, in RegisterUserInput) (*model.User, error) {
	if err := validateInput(in).OrNil(); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = model.RoleGuest
	}
	if in.Role != model.RoleGuest && !p.IsAdmin() {
		return nil, forbidden("register staff user")
	}

	user := &model.User{
		Email:      in.Email,
		FullName:   in.FullName,
		Role:       in.Role,
		TelegramID: in.TelegramID,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, base.ErrDuplicate) {
			return nil, invalid("email", "user already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("New user registered",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)

	return user, nil
}

// GetByID получает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, notFound("user", id)
	}
	return user, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("telegram user %d: %w", telegramID, ErrNotFound)
	}
	return user, nil
}

// StaffByTelegramID принципал персонала для команд бота
func (s *UserService) StaffByTelegramID(ctx context.Context, telegramID int64) (model.Principal, error) {
	user, err := s.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return model.Principal{}, err
	}

	p := user.Principal()
	if !p.IsStaff() {
		return model.Principal{}, forbidden("staff command")
	}
	return p, nil
}
