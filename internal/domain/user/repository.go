package user

import (
	"context"
	"time"
)

// UserRepository - interface for users, user_roles and profiles tables
type UserRepository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	UpsertRole(ctx context.Context, r UserRole) (UserRole, error)
	GetRole(ctx context.Context, userID string) (UserRole, error)

	UpsertProfile(ctx context.Context, p Profile) (Profile, error)
	GetProfile(ctx context.Context, userID string) (Profile, error)
}

// PasswordResetRepository - interface for password_reset_tokens table
type PasswordResetRepository interface {
	Create(ctx context.Context, t PasswordResetToken) (PasswordResetToken, error)
	GetByID(ctx context.Context, id string) (PasswordResetToken, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
}
