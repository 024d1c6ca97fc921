package account

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/user"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/jwt"
	"github.com/cmlabs-edu/eduops-backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	instA = "0190a1b2-0000-7000-8000-0000000000aa"
	instB = "0190a1b2-0000-7000-8000-0000000000bb"
)

type sentMail struct {
	to, name, link string
}

type fakeEmail struct {
	sent []sentMail
	err  error
}

func (f *fakeEmail) SendPasswordReset(_ context.Context, to, name, resetLink, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, name: name, link: resetLink})
	return nil
}

// profileFailingRepo fails the last step of account creation.
type profileFailingRepo struct {
	*memory.UserRepository
}

func (profileFailingRepo) UpsertProfile(context.Context, user.Profile) (user.Profile, error) {
	return user.Profile{}, errors.New("profiles table unavailable")
}

type testEnv struct {
	svc   *AccountServiceImpl
	users *memory.UserRepository
	mail  *fakeEmail
	clock time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		users: memory.NewUserRepository(),
		mail:  &fakeEmail{},
		clock: time.Now(),
	}
	svc := NewAccountService(
		memory.NewTransactor(),
		env.users,
		memory.NewPasswordResetRepository(),
		env.mail,
		jwt.NewJWTService("test-secret", "15m"),
		Config{ResetURL: "https://app.example.com/reset-password"},
	).(*AccountServiceImpl)
	svc.now = func() time.Time { return env.clock }
	env.svc = svc
	return env
}

var (
	superAdmin = access.Principal{UserID: "u-super", Role: access.RoleSuperAdmin}
	adminA     = access.Principal{UserID: "u-admin-a", Role: access.RoleInstitutionAdmin, InstitutionID: strPtr(instA)}
)

func strPtr(s string) *string { return &s }

func createStudent(t *testing.T, env *testEnv, email, institutionID string) user.AccountResponse {
	t.Helper()
	resp, err := env.svc.CreateStudentUser(context.Background(), superAdmin, user.CreateStudentUserRequest{
		Email:         email,
		FullName:      "Student " + email,
		Password:      "initial-pass",
		InstitutionID: institutionID,
	})
	require.NoError(t, err)
	return resp
}

// ===== ACCOUNT CREATION TESTS =====

func TestAccountService_CreateInstitutionAdmin_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.svc.CreateInstitutionAdmin(ctx, superAdmin, user.CreateInstitutionAdminRequest{
		Email:         "Head@School.org",
		FullName:      "Head Teacher",
		Password:      "s3cure-pass",
		InstitutionID: instA,
	})

	require.NoError(t, err)
	assert.Equal(t, "head@school.org", resp.Email)
	assert.Equal(t, string(access.RoleInstitutionAdmin), resp.Role)

	role, err := env.users.GetRole(ctx, resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, access.RoleInstitutionAdmin, role.Role)

	profile, err := env.users.GetProfile(ctx, resp.UserID)
	require.NoError(t, err)
	assert.Equal(t, instA, *profile.InstitutionID)
	assert.Equal(t, "Head Teacher", profile.FullName)
}

func TestAccountService_RoleAllowLists(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		caller access.Principal
		call   func(access.Principal) error
	}{
		{"institution admin cannot create institution admins", adminA, func(p access.Principal) error {
			_, err := env.svc.CreateInstitutionAdmin(ctx, p, user.CreateInstitutionAdminRequest{Email: "x@y.org", FullName: "X", Password: "password1", InstitutionID: instA})
			return err
		}},
		{"officer cannot create students", access.Principal{UserID: "u-o", Role: access.RoleOfficer}, func(p access.Principal) error {
			_, err := env.svc.CreateStudentUser(ctx, p, user.CreateStudentUserRequest{Email: "x@y.org", FullName: "X", Password: "password1", InstitutionID: instA})
			return err
		}},
		{"ceo cannot send password resets", access.Principal{UserID: "u-ceo", Role: access.RoleCEO}, func(p access.Principal) error {
			_, err := env.svc.SendPasswordReset(ctx, p, user.SendPasswordResetRequest{Email: "x@y.org"})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(tt.caller), user.ErrCallerRoleNotAllowed)
		})
	}
}

func TestAccountService_CreateStudentUser_InstitutionScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := user.CreateStudentUserRequest{Email: "kid@school.org", FullName: "Kid", Password: "password1", InstitutionID: instB}

	_, err := env.svc.CreateStudentUser(ctx, adminA, req)
	assert.ErrorIs(t, err, user.ErrInstitutionScope)

	req.InstitutionID = instA
	resp, err := env.svc.CreateStudentUser(ctx, adminA, req)
	require.NoError(t, err)
	assert.Equal(t, string(access.RoleStudent), resp.Role)
}

func TestAccountService_CreateStudentUser_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	createStudent(t, env, "kid@school.org", instA)

	_, err := env.svc.CreateStudentUser(context.Background(), superAdmin, user.CreateStudentUserRequest{
		Email: "KID@school.org", FullName: "Kid Again", Password: "password1", InstitutionID: instA,
	})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)
}

func TestAccountService_CreateRollsBackOnProfileFailure(t *testing.T) {
	users := memory.NewUserRepository()
	svc := NewAccountService(memory.NewTransactor(), profileFailingRepo{users}, memory.NewPasswordResetRepository(), &fakeEmail{}, jwt.NewJWTService("s", "15m"), Config{})

	_, err := svc.CreateStudentUser(context.Background(), superAdmin, user.CreateStudentUserRequest{
		Email: "kid@school.org", FullName: "Kid", Password: "password1", InstitutionID: instA,
	})
	require.Error(t, err)

	_, err = users.GetByEmail(context.Background(), "kid@school.org")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

// ===== PASSWORD RESET TESTS =====

func resetParams(t *testing.T, link string) (string, string) {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token_id"), u.Query().Get("token")
}

func TestAccountService_PasswordReset_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createStudent(t, env, "kid@school.org", instA)

	resp, err := env.svc.SendPasswordReset(ctx, adminA, user.SendPasswordResetRequest{Email: "kid@school.org"})
	require.NoError(t, err)
	assert.Equal(t, "kid@school.org", resp.Email)
	require.Len(t, env.mail.sent, 1)
	assert.Contains(t, env.mail.sent[0].link, "https://app.example.com/reset-password?")

	tokenID, token := resetParams(t, env.mail.sent[0].link)
	err = env.svc.ConfirmPasswordReset(ctx, user.ConfirmPasswordResetRequest{TokenID: tokenID, Token: token, NewPassword: "brand-new-pass"})
	require.NoError(t, err)

	login, err := env.svc.Login(ctx, user.LoginRequest{Email: "kid@school.org", Password: "brand-new-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)
	assert.Equal(t, string(access.RoleStudent), login.Role)

	err = env.svc.ConfirmPasswordReset(ctx, user.ConfirmPasswordResetRequest{TokenID: tokenID, Token: token, NewPassword: "another-pass"})
	assert.ErrorIs(t, err, user.ErrResetTokenInvalid)
}

func TestAccountService_PasswordReset_ExpiredAndWrongToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createStudent(t, env, "kid@school.org", instA)

	_, err := env.svc.SendPasswordReset(ctx, superAdmin, user.SendPasswordResetRequest{Email: "kid@school.org"})
	require.NoError(t, err)
	tokenID, token := resetParams(t, env.mail.sent[0].link)

	err = env.svc.ConfirmPasswordReset(ctx, user.ConfirmPasswordResetRequest{TokenID: tokenID, Token: "not-the-token", NewPassword: "brand-new-pass"})
	assert.ErrorIs(t, err, user.ErrResetTokenInvalid)

	env.clock = env.clock.Add(2 * time.Hour)
	err = env.svc.ConfirmPasswordReset(ctx, user.ConfirmPasswordResetRequest{TokenID: tokenID, Token: token, NewPassword: "brand-new-pass"})
	assert.ErrorIs(t, err, user.ErrResetTokenInvalid)
}

func TestAccountService_PasswordReset_OtherInstitution(t *testing.T) {
	env := newTestEnv(t)
	createStudent(t, env, "kid@school.org", instB)

	_, err := env.svc.SendPasswordReset(context.Background(), adminA, user.SendPasswordResetRequest{Email: "kid@school.org"})
	assert.ErrorIs(t, err, user.ErrInstitutionScope)
	assert.Empty(t, env.mail.sent)
}

func TestAccountService_PasswordReset_EmailFailure(t *testing.T) {
	env := newTestEnv(t)
	createStudent(t, env, "kid@school.org", instA)
	env.mail.err = errors.New("sendgrid: 503")

	_, err := env.svc.SendPasswordReset(context.Background(), superAdmin, user.SendPasswordResetRequest{Email: "kid@school.org"})
	assert.Error(t, err)
}

// ===== LOGIN TESTS =====

func TestAccountService_Login_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createStudent(t, env, "kid@school.org", instA)

	_, err := env.svc.Login(ctx, user.LoginRequest{Email: "kid@school.org", Password: "wrong-pass"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	_, err = env.svc.Login(ctx, user.LoginRequest{Email: "nobody@school.org", Password: "initial-pass"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}
