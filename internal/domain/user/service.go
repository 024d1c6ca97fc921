package user

import (
	"context"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
)

// AccountService holds the privileged account operations. Each call checks
// the caller's role against its own allow-list.
type AccountService interface {
	CreateInstitutionAdmin(ctx context.Context, caller access.Principal, req CreateInstitutionAdminRequest) (AccountResponse, error)
	CreateStudentUser(ctx context.Context, caller access.Principal, req CreateStudentUserRequest) (AccountResponse, error)
	SendPasswordReset(ctx context.Context, caller access.Principal, req SendPasswordResetRequest) (PasswordResetResponse, error)
	ConfirmPasswordReset(ctx context.Context, req ConfirmPasswordResetRequest) error
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
}
