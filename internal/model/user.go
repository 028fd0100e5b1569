package model

import "time"

type Role string

const (
	RoleGuest Role = "guest"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleGuest, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Role       Role      `json:"role"`
	TelegramID *int64    `json:"telegram_id,omitempty"` // указатель - может быть nil
	CreatedAt  time.Time `json:"created_at"`
}

// Principal уже аутентифицированный участник операции
type Principal struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

// IsStaff персонал или администратор
func (p Principal) IsStaff() bool {
	return p.Role == RoleStaff || p.Role == RoleAdmin
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Owns является ли участник владельцем сущности гостя guestID
func (p Principal) Owns(guestID int64) bool {
	return p.ID == guestID
}

func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Role: u.Role}
}
