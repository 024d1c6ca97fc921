package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/user"
	"github.com/cmlabs-edu/eduops-backend/internal/handler/http/response"
)

type AccountHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	ConfirmPasswordReset(w http.ResponseWriter, r *http.Request)

	CreateInstitutionAdmin(w http.ResponseWriter, r *http.Request)
	CreateStudentUser(w http.ResponseWriter, r *http.Request)
	SendPasswordReset(w http.ResponseWriter, r *http.Request)
}

type AccountHandlerImpl struct {
	accountService user.AccountService
}

func NewAccountHandler(accountService user.AccountService) AccountHandler {
	return &AccountHandlerImpl{accountService: accountService}
}

// Login implements AccountHandler.
func (h *AccountHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req user.LoginRequest
	if err := decodeJSON(r, &req, false); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.accountService.Login(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Login successful", resp)
}

// ConfirmPasswordReset implements AccountHandler.
func (h *AccountHandlerImpl) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req user.ConfirmPasswordResetRequest
	if err := decodeJSON(r, &req, false); err != nil {
		slog.Error("Confirm password reset decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := h.accountService.ConfirmPasswordReset(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Password updated successfully", nil)
}

// CreateInstitutionAdmin implements AccountHandler.
func (h *AccountHandlerImpl) CreateInstitutionAdmin(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req user.CreateInstitutionAdminRequest
	if err := decodeJSON(r, &req, false); err != nil {
		slog.Error("Create institution admin decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.accountService.CreateInstitutionAdmin(r.Context(), caller, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Institution admin created successfully", resp)
}

// CreateStudentUser implements AccountHandler.
func (h *AccountHandlerImpl) CreateStudentUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req user.CreateStudentUserRequest
	if err := decodeJSON(r, &req, false); err != nil {
		slog.Error("Create student decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.accountService.CreateStudentUser(r.Context(), caller, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Student account created successfully", resp)
}

// SendPasswordReset implements AccountHandler.
func (h *AccountHandlerImpl) SendPasswordReset(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req user.SendPasswordResetRequest
	if err := decodeJSON(r, &req, false); err != nil {
		slog.Error("Send password reset decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.accountService.SendPasswordReset(r.Context(), caller, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Accepted(w, "Password reset email sent", resp)
}
