package user

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserEmailExists       = errors.New("email already registered")
	ErrProfileNotFound       = errors.New("profile not found")
	ErrRoleNotFound          = errors.New("user role not found")
	ErrCallerRoleNotAllowed  = errors.New("caller role is not allowed to perform this action")
	ErrInstitutionScope      = errors.New("institution admins can only manage their own institution")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrResetTokenNotFound    = errors.New("password reset token not found")
	ErrResetTokenInvalid     = errors.New("password reset token is invalid or expired")
	ErrInvalidPasswordLength = errors.New("password must be at least 8 characters")
)
