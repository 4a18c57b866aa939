package domain

import (
	"context"
	"time"
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PhoneNo   string    `json:"phoneno"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFilter narrows ListUsers by case-insensitive substring. Empty fields match everything.
type UserFilter struct {
	Name    string
	PhoneNo string
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]User, error)
}
