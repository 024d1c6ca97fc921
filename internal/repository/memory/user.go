package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/user"
)

type UserRepository struct {
	mu       sync.RWMutex
	users    map[string]user.User
	roles    map[string]user.UserRole
	profiles map[string]user.Profile
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:    make(map[string]user.User),
		roles:    make(map[string]user.UserRole),
		profiles: make(map[string]user.Profile),
	}
}

var _ user.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u.Email = strings.ToLower(u.Email)
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return user.User{}, user.ErrUserEmailExists
		}
	}

	now := time.Now()
	u.ID = newID()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = u

	id := u.ID
	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.users, id)
	})
	return u, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	prev := u
	u.PasswordHash = &passwordHash
	u.UpdatedAt = time.Now()
	r.users[userID] = u

	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.users[userID] = prev
	})
	return nil
}

func (r *UserRepository) UpsertRole(ctx context.Context, role user.UserRole) (user.UserRole, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, existed := r.roles[role.UserID]
	now := time.Now()
	role.CreatedAt = now
	if existed {
		role.CreatedAt = prev.CreatedAt
	}
	role.UpdatedAt = now
	r.roles[role.UserID] = role

	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existed {
			r.roles[role.UserID] = prev
			return
		}
		delete(r.roles, role.UserID)
	})
	return role, nil
}

func (r *UserRepository) GetRole(_ context.Context, userID string) (user.UserRole, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.roles[userID]
	if !ok {
		return user.UserRole{}, user.ErrRoleNotFound
	}
	return role, nil
}

func (r *UserRepository) UpsertProfile(ctx context.Context, p user.Profile) (user.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, existed := r.profiles[p.UserID]
	now := time.Now()
	p.CreatedAt = now
	if existed {
		p.CreatedAt = prev.CreatedAt
	}
	p.UpdatedAt = now
	r.profiles[p.UserID] = p

	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existed {
			r.profiles[p.UserID] = prev
			return
		}
		delete(r.profiles, p.UserID)
	})
	return p, nil
}

func (r *UserRepository) GetProfile(_ context.Context, userID string) (user.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return user.Profile{}, user.ErrProfileNotFound
	}
	return p, nil
}

type PasswordResetRepository struct {
	mu     sync.RWMutex
	tokens map[string]user.PasswordResetToken
}

func NewPasswordResetRepository() *PasswordResetRepository {
	return &PasswordResetRepository{tokens: make(map[string]user.PasswordResetToken)}
}

var _ user.PasswordResetRepository = (*PasswordResetRepository)(nil)

func (r *PasswordResetRepository) Create(ctx context.Context, t user.PasswordResetToken) (user.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = newID()
	t.CreatedAt = time.Now()
	r.tokens[t.ID] = t

	id := t.ID
	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.tokens, id)
	})
	return t, nil
}

func (r *PasswordResetRepository) GetByID(_ context.Context, id string) (user.PasswordResetToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tokens[id]
	if !ok {
		return user.PasswordResetToken{}, user.ErrResetTokenNotFound
	}
	return t, nil
}

func (r *PasswordResetRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[id]
	if !ok || t.UsedAt != nil {
		return user.ErrResetTokenInvalid
	}
	prev := t
	t.UsedAt = &at
	r.tokens[id] = t

	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.tokens[id] = prev
	})
	return nil
}
