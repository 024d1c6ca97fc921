package user

import (
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
)

type User struct {
	ID           string
	Email        string
	PasswordHash *string
	FullName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRole is the row in user_roles that drives authorization.
type UserRole struct {
	UserID          string
	Role            access.Role
	AllowedFeatures []access.Feature
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Profile struct {
	UserID        string
	FullName      string
	InstitutionID *string
	OfficerID     *string
	ClassID       *string
	PhoneNumber   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PasswordResetToken stores only a bcrypt hash of the emailed secret.
type PasswordResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (t PasswordResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
