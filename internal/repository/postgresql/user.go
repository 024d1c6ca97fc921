package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/user"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

func (r *userRepositoryImpl) Create(ctx context.Context, u user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (email, password_hash, full_name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query, strings.ToLower(u.Email), u.PasswordHash, u.FullName).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("insert user: %w", err)
	}
	u.Email = strings.ToLower(u.Email)
	return u, nil
}

func (r *userRepositoryImpl) getBy(ctx context.Context, column, value string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	var u user.User
	query := `SELECT id, email, password_hash, full_name, created_at, updated_at FROM users WHERE ` + column + ` = $1`
	err := q.QueryRow(ctx, query, value).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getBy(ctx, "email", strings.ToLower(email))
}

func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, userID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *userRepositoryImpl) UpsertRole(ctx context.Context, role user.UserRole) (user.UserRole, error) {
	q := GetQuerier(ctx, r.db)

	features := make([]string, 0, len(role.AllowedFeatures))
	for _, f := range role.AllowedFeatures {
		features = append(features, string(f))
	}

	query := `
		INSERT INTO user_roles (user_id, role, allowed_features, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			role = EXCLUDED.role,
			allowed_features = EXCLUDED.allowed_features,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	if err := q.QueryRow(ctx, query, role.UserID, role.Role, features).Scan(&role.CreatedAt, &role.UpdatedAt); err != nil {
		return user.UserRole{}, fmt.Errorf("upsert user role: %w", err)
	}
	return role, nil
}

func (r *userRepositoryImpl) GetRole(ctx context.Context, userID string) (user.UserRole, error) {
	q := GetQuerier(ctx, r.db)

	var (
		role     user.UserRole
		features []string
	)
	err := q.QueryRow(ctx, `
		SELECT user_id, role, allowed_features, created_at, updated_at
		FROM user_roles WHERE user_id = $1
	`, userID).Scan(&role.UserID, &role.Role, &features, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.UserRole{}, user.ErrRoleNotFound
		}
		return user.UserRole{}, err
	}
	role.AllowedFeatures = access.ParseFeatures(features)
	return role, nil
}

func (r *userRepositoryImpl) UpsertProfile(ctx context.Context, p user.Profile) (user.Profile, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO profiles (user_id, full_name, institution_id, officer_id, class_id, phone_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			institution_id = EXCLUDED.institution_id,
			officer_id = EXCLUDED.officer_id,
			class_id = EXCLUDED.class_id,
			phone_number = EXCLUDED.phone_number,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query, p.UserID, p.FullName, p.InstitutionID, p.OfficerID, p.ClassID, p.PhoneNumber).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return user.Profile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return p, nil
}

func (r *userRepositoryImpl) GetProfile(ctx context.Context, userID string) (user.Profile, error) {
	q := GetQuerier(ctx, r.db)

	var p user.Profile
	err := q.QueryRow(ctx, `
		SELECT user_id, full_name, institution_id, officer_id, class_id, phone_number, created_at, updated_at
		FROM profiles WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.FullName, &p.InstitutionID, &p.OfficerID, &p.ClassID, &p.PhoneNumber, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.Profile{}, user.ErrProfileNotFound
		}
		return user.Profile{}, err
	}
	return p, nil
}

type passwordResetRepositoryImpl struct {
	db *database.DB
}

func NewPasswordResetRepository(db *database.DB) user.PasswordResetRepository {
	return &passwordResetRepositoryImpl{db: db}
}

func (r *passwordResetRepositoryImpl) Create(ctx context.Context, t user.PasswordResetToken) (user.PasswordResetToken, error) {
	q := GetQuerier(ctx, r.db)

	err := q.QueryRow(ctx, `
		INSERT INTO password_reset_tokens (user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`, t.UserID, t.TokenHash, t.ExpiresAt).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return user.PasswordResetToken{}, fmt.Errorf("insert password reset token: %w", err)
	}
	return t, nil
}

func (r *passwordResetRepositoryImpl) GetByID(ctx context.Context, id string) (user.PasswordResetToken, error) {
	q := GetQuerier(ctx, r.db)

	var t user.PasswordResetToken
	err := q.QueryRow(ctx, `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM password_reset_tokens WHERE id = $1
	`, id).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.PasswordResetToken{}, user.ErrResetTokenNotFound
		}
		return user.PasswordResetToken{}, err
	}
	return t, nil
}

func (r *passwordResetRepositoryImpl) MarkUsed(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE password_reset_tokens SET used_at = $2 WHERE id = $1 AND used_at IS NULL`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrResetTokenInvalid
	}
	return nil
}
