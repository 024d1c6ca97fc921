package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/attendance"
	"github.com/cmlabs-edu/eduops-backend/internal/handler/http/response"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Mark(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &AttendanceHandlerImpl{attendanceService: attendanceService}
}

// CheckIn implements AttendanceHandler.
func (h *AttendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req attendance.CheckInRequest
	if err := decodeJSON(r, &req, true); err != nil {
		slog.Error("Check in decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.attendanceService.CheckIn(r.Context(), caller, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Checked in successfully", resp)
}

// CheckOut implements AttendanceHandler.
func (h *AttendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	resp, err := h.attendanceService.CheckOut(r.Context(), caller)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Checked out successfully", resp)
}

// Mark implements AttendanceHandler.
func (h *AttendanceHandlerImpl) Mark(w http.ResponseWriter, r *http.Request) {
	var req attendance.MarkAttendanceRequest
	if err := decodeJSON(r, &req, false); err != nil {
		slog.Error("Mark attendance decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.attendanceService.Mark(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance marked successfully", resp)
}

// Summary implements AttendanceHandler. Month and year default to the current
// month, officer_id to the caller.
func (h *AttendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	now := time.Now()
	q := attendance.SummaryQuery{
		OfficerID:   r.URL.Query().Get("officer_id"),
		PeriodMonth: queryInt(r, "month", int(now.Month())),
		PeriodYear:  queryInt(r, "year", now.Year()),
	}
	if q.OfficerID == "" {
		q.OfficerID = caller.ActorID()
	}

	resp, err := h.attendanceService.MonthlySummary(r.Context(), caller, q)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}
