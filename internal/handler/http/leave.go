package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/leave"
	"github.com/cmlabs-edu/eduops-backend/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)

	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)

	AffectedSlots(w http.ResponseWriter, r *http.Request)
	RefreshAffectedSlots(w http.ResponseWriter, r *http.Request)
	AssignSubstitute(w http.ResponseWriter, r *http.Request)
	ComposeNotice(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

// Submit implements LeaveHandler.
func (h *LeaveHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req leave.SubmitLeaveRequest
	if err := decodeJSON(r, &req, false); err != nil {
		slog.Error("Submit leave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.leaveService.Submit(r.Context(), caller, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave application submitted successfully", resp)
}

// List implements LeaveHandler.
func (h *LeaveHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	filter := leave.LeaveApplicationFilter{
		OfficerID:     queryString(r, "officer_id"),
		InstitutionID: queryString(r, "institution_id"),
		Page:          queryInt(r, "page", 1),
		Limit:         queryInt(r, "limit", 20),
	}
	if status := queryString(r, "status"); status != nil {
		s := leave.Status(*status)
		filter.Status = &s
	}
	if stage := queryString(r, "approval_stage"); stage != nil {
		s := leave.ApprovalStage(*stage)
		filter.ApprovalStage = &s
	}
	if applicantType := queryString(r, "applicant_type"); applicantType != nil {
		t := leave.ApplicantType(*applicantType)
		filter.ApplicantType = &t
	}

	resp, err := h.leaveService.List(r.Context(), caller, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, resp.Applications, response.NewMeta(resp.Page, resp.Limit, resp.Total))
}

// Get implements LeaveHandler.
func (h *LeaveHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	resp, err := h.leaveService.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}

// Approve implements LeaveHandler.
func (h *LeaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req leave.ApproveLeaveRequest
	if err := decodeJSON(r, &req, true); err != nil {
		slog.Error("Approve leave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.leaveService.Approve(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave application approved successfully", resp)
}

// Reject implements LeaveHandler.
func (h *LeaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req leave.RejectLeaveRequest
	if err := decodeJSON(r, &req, false); err != nil {
		slog.Error("Reject leave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.leaveService.Reject(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave application rejected successfully", resp)
}

// Cancel implements LeaveHandler.
func (h *LeaveHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	resp, err := h.leaveService.Cancel(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave application cancelled successfully", resp)
}

// AffectedSlots implements LeaveHandler.
func (h *LeaveHandlerImpl) AffectedSlots(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	slots, err := h.leaveService.AffectedSlots(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, slots)
}

// RefreshAffectedSlots implements LeaveHandler.
func (h *LeaveHandlerImpl) RefreshAffectedSlots(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	resp, err := h.leaveService.RefreshAffectedSlots(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Affected slots refreshed", resp)
}

// AssignSubstitute implements LeaveHandler.
func (h *LeaveHandlerImpl) AssignSubstitute(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req leave.AssignSubstituteRequest
	if err := decodeJSON(r, &req, false); err != nil {
		slog.Error("Assign substitute decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.leaveService.AssignSubstitute(r.Context(), caller, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Substitute assigned successfully", resp)
}

// ComposeNotice implements LeaveHandler.
func (h *LeaveHandlerImpl) ComposeNotice(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	resp, err := h.leaveService.ComposeNotice(r.Context(), caller, chi.URLParam(r, "id"), r.URL.Query().Get("to"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}
