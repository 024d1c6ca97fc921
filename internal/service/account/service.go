package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/user"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/database"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/email"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	institutionAdminCreators = []access.Role{access.RoleSuperAdmin, access.RoleSystemAdmin}
	studentCreators          = []access.Role{access.RoleSuperAdmin, access.RoleSystemAdmin, access.RoleInstitutionAdmin}
	passwordResetters        = []access.Role{access.RoleSuperAdmin, access.RoleSystemAdmin, access.RoleInstitutionAdmin}
)

const DefaultResetTokenTTL = time.Hour

type Config struct {
	// ResetURL is the front-end page that accepts token_id and token query params.
	ResetURL      string
	ResetTokenTTL time.Duration
}

type AccountServiceImpl struct {
	tx           database.Transactor
	userRepo     user.UserRepository
	resetRepo    user.PasswordResetRepository
	emailService email.EmailService
	jwtService   jwt.Service
	cfg          Config
	now          func() time.Time
}

func NewAccountService(
	tx database.Transactor,
	userRepo user.UserRepository,
	resetRepo user.PasswordResetRepository,
	emailService email.EmailService,
	jwtService jwt.Service,
	cfg Config,
) user.AccountService {
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = DefaultResetTokenTTL
	}
	return &AccountServiceImpl{
		tx:           tx,
		userRepo:     userRepo,
		resetRepo:    resetRepo,
		emailService: emailService,
		jwtService:   jwtService,
		cfg:          cfg,
		now:          time.Now,
	}
}

func hashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkAllowed(caller access.Principal, allowed []access.Role) error {
	if !slices.Contains(allowed, caller.Role) {
		return user.ErrCallerRoleNotAllowed
	}
	return nil
}

// createAccount inserts the user, its role and its profile in one transaction.
func (s *AccountServiceImpl) createAccount(ctx context.Context, u user.User, password string, role access.Role, profile user.Profile) (user.User, error) {
	hash, err := hashSecret(password)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = &hash

	var created user.User
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err = s.userRepo.Create(ctx, u)
		if err != nil {
			if errors.Is(err, user.ErrUserEmailExists) {
				return err
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		if _, err := s.userRepo.UpsertRole(ctx, user.UserRole{UserID: created.ID, Role: role}); err != nil {
			return fmt.Errorf("failed to assign role: %w", err)
		}

		profile.UserID = created.ID
		profile.FullName = created.FullName
		if _, err := s.userRepo.UpsertProfile(ctx, profile); err != nil {
			return fmt.Errorf("failed to save profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return user.User{}, err
	}
	return created, nil
}

// CreateInstitutionAdmin implements user.AccountService.
func (s *AccountServiceImpl) CreateInstitutionAdmin(ctx context.Context, caller access.Principal, req user.CreateInstitutionAdminRequest) (user.AccountResponse, error) {
	if err := checkAllowed(caller, institutionAdminCreators); err != nil {
		return user.AccountResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return user.AccountResponse{}, err
	}

	institutionID := req.InstitutionID
	created, err := s.createAccount(ctx,
		user.User{Email: strings.TrimSpace(req.Email), FullName: strings.TrimSpace(req.FullName)},
		req.Password,
		access.RoleInstitutionAdmin,
		user.Profile{InstitutionID: &institutionID, PhoneNumber: req.PhoneNumber},
	)
	if err != nil {
		return user.AccountResponse{}, err
	}

	slog.Info("Institution admin created",
		"user_id", created.ID,
		"institution_id", institutionID,
		"created_by", caller.UserID,
	)
	return user.AccountResponse{
		UserID:        created.ID,
		Email:         created.Email,
		FullName:      created.FullName,
		Role:          string(access.RoleInstitutionAdmin),
		InstitutionID: &institutionID,
	}, nil
}

// CreateStudentUser implements user.AccountService.
func (s *AccountServiceImpl) CreateStudentUser(ctx context.Context, caller access.Principal, req user.CreateStudentUserRequest) (user.AccountResponse, error) {
	if err := checkAllowed(caller, studentCreators); err != nil {
		return user.AccountResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return user.AccountResponse{}, err
	}
	if caller.Role == access.RoleInstitutionAdmin && !caller.InInstitution(req.InstitutionID) {
		return user.AccountResponse{}, user.ErrInstitutionScope
	}

	institutionID := req.InstitutionID
	created, err := s.createAccount(ctx,
		user.User{Email: strings.TrimSpace(req.Email), FullName: strings.TrimSpace(req.FullName)},
		req.Password,
		access.RoleStudent,
		user.Profile{InstitutionID: &institutionID, ClassID: req.ClassID},
	)
	if err != nil {
		return user.AccountResponse{}, err
	}

	slog.Info("Student user created",
		"user_id", created.ID,
		"institution_id", institutionID,
		"created_by", caller.UserID,
	)
	return user.AccountResponse{
		UserID:        created.ID,
		Email:         created.Email,
		FullName:      created.FullName,
		Role:          string(access.RoleStudent),
		InstitutionID: &institutionID,
		ClassID:       req.ClassID,
	}, nil
}

// SendPasswordReset issues a single-use reset token and emails the link. The
// token row is rolled back when the email cannot be delivered.
func (s *AccountServiceImpl) SendPasswordReset(ctx context.Context, caller access.Principal, req user.SendPasswordResetRequest) (user.PasswordResetResponse, error) {
	if err := checkAllowed(caller, passwordResetters); err != nil {
		return user.PasswordResetResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return user.PasswordResetResponse{}, err
	}

	target, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.PasswordResetResponse{}, err
		}
		return user.PasswordResetResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if caller.Role == access.RoleInstitutionAdmin {
		profile, err := s.userRepo.GetProfile(ctx, target.ID)
		if err != nil && !errors.Is(err, user.ErrProfileNotFound) {
			return user.PasswordResetResponse{}, fmt.Errorf("failed to get profile: %w", err)
		}
		if err != nil || profile.InstitutionID == nil || !caller.InInstitution(*profile.InstitutionID) {
			return user.PasswordResetResponse{}, user.ErrInstitutionScope
		}
	}

	secret := uuid.NewString()
	hash, err := hashSecret(secret)
	if err != nil {
		return user.PasswordResetResponse{}, fmt.Errorf("failed to hash reset token: %w", err)
	}
	expiresAt := s.now().Add(s.cfg.ResetTokenTTL)

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		token, err := s.resetRepo.Create(ctx, user.PasswordResetToken{
			UserID:    target.ID,
			TokenHash: hash,
			ExpiresAt: expiresAt,
		})
		if err != nil {
			return fmt.Errorf("failed to store reset token: %w", err)
		}

		link := s.resetLink(token.ID, secret)
		if err := s.emailService.SendPasswordReset(ctx, target.Email, target.FullName, link, expiresAt.Format(time.RFC1123)); err != nil {
			return fmt.Errorf("failed to send password reset email: %w", err)
		}
		return nil
	})
	if err != nil {
		return user.PasswordResetResponse{}, err
	}

	slog.Info("Password reset sent", "user_id", target.ID, "requested_by", caller.UserID)
	return user.PasswordResetResponse{
		Email:     target.Email,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	}, nil
}

func (s *AccountServiceImpl) resetLink(tokenID, secret string) string {
	q := url.Values{}
	q.Set("token_id", tokenID)
	q.Set("token", secret)

	sep := "?"
	if strings.Contains(s.cfg.ResetURL, "?") {
		sep = "&"
	}
	return s.cfg.ResetURL + sep + q.Encode()
}

// ConfirmPasswordReset implements user.AccountService.
func (s *AccountServiceImpl) ConfirmPasswordReset(ctx context.Context, req user.ConfirmPasswordResetRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	token, err := s.resetRepo.GetByID(ctx, req.TokenID)
	if err != nil {
		if errors.Is(err, user.ErrResetTokenNotFound) {
			return user.ErrResetTokenInvalid
		}
		return fmt.Errorf("failed to get reset token: %w", err)
	}

	now := s.now()
	if !token.Usable(now) {
		return user.ErrResetTokenInvalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(token.TokenHash), []byte(req.Token)); err != nil {
		return user.ErrResetTokenInvalid
	}

	hash, err := hashSecret(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.resetRepo.MarkUsed(ctx, token.ID, now); err != nil {
			if errors.Is(err, user.ErrResetTokenInvalid) {
				return err
			}
			return fmt.Errorf("failed to mark reset token used: %w", err)
		}
		if err := s.userRepo.UpdatePassword(ctx, token.UserID, hash); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		return nil
	})
}

// Login implements user.AccountService.
func (s *AccountServiceImpl) Login(ctx context.Context, req user.LoginRequest) (user.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return user.LoginResponse{}, err
	}

	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.LoginResponse{}, user.ErrInvalidCredentials
		}
		return user.LoginResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if u.PasswordHash == nil {
		return user.LoginResponse{}, user.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(req.Password)); err != nil {
		return user.LoginResponse{}, user.ErrInvalidCredentials
	}

	role, err := s.userRepo.GetRole(ctx, u.ID)
	if err != nil {
		if errors.Is(err, user.ErrRoleNotFound) {
			return user.LoginResponse{}, user.ErrInvalidCredentials
		}
		return user.LoginResponse{}, fmt.Errorf("failed to get user role: %w", err)
	}

	principal := access.Principal{
		UserID:          u.ID,
		Email:           u.Email,
		Role:            role.Role,
		AllowedFeatures: role.AllowedFeatures,
	}
	profile, err := s.userRepo.GetProfile(ctx, u.ID)
	switch {
	case err == nil:
		principal.InstitutionID = profile.InstitutionID
		principal.OfficerID = profile.OfficerID
	case !errors.Is(err, user.ErrProfileNotFound):
		return user.LoginResponse{}, fmt.Errorf("failed to get profile: %w", err)
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(principal)
	if err != nil {
		return user.LoginResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return user.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Role:        string(role.Role),
	}, nil
}
