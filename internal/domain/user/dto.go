package user

import (
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/validator"
)

const minPasswordLength = 8

func validateAccountFields(errs *validator.ValidationErrors, email, fullName, password string) {
	if validator.IsEmpty(email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(email) {
		errs.Add("email", "invalid email format")
	}
	if validator.IsEmpty(fullName) {
		errs.Add("full_name", "full_name is required")
	}
	if len(password) < minPasswordLength {
		errs.Add("password", ErrInvalidPasswordLength.Error())
	}
}

type CreateInstitutionAdminRequest struct {
	Email         string  `json:"email"`
	FullName      string  `json:"full_name"`
	Password      string  `json:"password"`
	InstitutionID string  `json:"institution_id"`
	PhoneNumber   *string `json:"phone_number,omitempty"`
}

func (r *CreateInstitutionAdminRequest) Validate() error {
	var errs validator.ValidationErrors
	validateAccountFields(&errs, r.Email, r.FullName, r.Password)
	if !validator.IsValidUUID(r.InstitutionID) {
		errs.Add("institution_id", "institution_id must be a valid UUID")
	}
	return errs.Err()
}

type CreateStudentUserRequest struct {
	Email         string  `json:"email"`
	FullName      string  `json:"full_name"`
	Password      string  `json:"password"`
	InstitutionID string  `json:"institution_id"`
	ClassID       *string `json:"class_id,omitempty"`
}

func (r *CreateStudentUserRequest) Validate() error {
	var errs validator.ValidationErrors
	validateAccountFields(&errs, r.Email, r.FullName, r.Password)
	if !validator.IsValidUUID(r.InstitutionID) {
		errs.Add("institution_id", "institution_id must be a valid UUID")
	}
	if r.ClassID != nil && !validator.IsValidUUID(*r.ClassID) {
		errs.Add("class_id", "class_id must be a valid UUID")
	}
	return errs.Err()
}

type SendPasswordResetRequest struct {
	Email string `json:"email"`
}

func (r *SendPasswordResetRequest) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "invalid email format")
	}
	return errs.Err()
}

type ConfirmPasswordResetRequest struct {
	TokenID     string `json:"token_id"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (r *ConfirmPasswordResetRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.TokenID) {
		errs.Add("token_id", "token_id is required")
	}
	if validator.IsEmpty(r.Token) {
		errs.Add("token", "token is required")
	}
	if len(r.NewPassword) < minPasswordLength {
		errs.Add("new_password", ErrInvalidPasswordLength.Error())
	}
	return errs.Err()
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Email) {
		errs.Add("email", "email is required")
	}
	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	}
	return errs.Err()
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
	Role        string `json:"role"`
}

type AccountResponse struct {
	UserID        string  `json:"user_id"`
	Email         string  `json:"email"`
	FullName      string  `json:"full_name"`
	Role          string  `json:"role"`
	InstitutionID *string `json:"institution_id,omitempty"`
	ClassID       *string `json:"class_id,omitempty"`
}

type PasswordResetResponse struct {
	Email     string `json:"email"`
	ExpiresAt string `json:"expires_at"`
}
