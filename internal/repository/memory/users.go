package memory

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/hotel_manager/internal/model"
	"github.com/Freeeeeet/hotel_manager/internal/repository/base"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	defer r.s.autocommit(ctx)()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.data.users {
		if u.Email == user.Email {
			return fmt.Errorf("create user: users_email_key: %w", base.ErrDuplicate)
		}
		if user.TelegramID != nil && u.TelegramID != nil && *u.TelegramID == *user.TelegramID {
			return fmt.Errorf("create user: users_telegram_id_key: %w", base.ErrDuplicate)
		}
	}

	user.ID = next(&r.s.seq.users)
	user.CreatedAt = r.s.clock()
	r.s.data.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.data.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (r *UserRepository) GetByTelegramID(_ context.Context, telegramID int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.data.users {
		if u.TelegramID != nil && *u.TelegramID == telegramID {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}
