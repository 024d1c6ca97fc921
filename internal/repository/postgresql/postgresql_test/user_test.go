package postgresql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/user"
	"github.com/cmlabs-edu/eduops-backend/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserRepository_CreateAndGetByEmail(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(testDB)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	hashStr := string(hash)

	created, err := repo.Create(ctx, user.User{Email: "Head@School.Example.com", PasswordHash: &hashStr, FullName: "Head Admin"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "head@school.example.com", created.Email)

	found, err := repo.GetByEmail(ctx, "HEAD@school.example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	require.NotNil(t, found.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*found.PasswordHash), []byte("s3cret-pass")))
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(testDB)

	_, err := repo.Create(ctx, user.User{Email: "dup@example.com", FullName: "First"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, user.User{Email: "DUP@example.com", FullName: "Second"})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)
}

func TestUserRepository_RoleAndProfile(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(testDB)

	u, err := repo.Create(ctx, user.User{Email: "admin@example.com", FullName: "Admin"})
	require.NoError(t, err)

	_, err = repo.UpsertRole(ctx, user.UserRole{UserID: u.ID, Role: access.RoleInstitutionAdmin, AllowedFeatures: []access.Feature{access.FeatureRecruitmentManage}})
	require.NoError(t, err)
	role, err := repo.GetRole(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, access.RoleInstitutionAdmin, role.Role)
	assert.Equal(t, []access.Feature{access.FeatureRecruitmentManage}, role.AllowedFeatures)

	_, err = repo.GetProfile(ctx, u.ID)
	assert.ErrorIs(t, err, user.ErrProfileNotFound)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := postgresql.NewUserRepository(testDB)
	tx := postgresql.NewTransactor(testDB)
	boom := errors.New("boom")

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.Create(ctx, user.User{Email: "ghost@example.com", FullName: "Ghost"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.GetByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
