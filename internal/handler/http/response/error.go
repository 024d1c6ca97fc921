package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/attendance"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/leave"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/officer"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/payroll"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/recruitment"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/timetable"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/user"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/jwt"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveApplicationNotFound):
		NotFound(w, "Leave application not found")
	case errors.Is(err, leave.ErrVersionConflict):
		Conflict(w, "Leave application was modified by someone else, reload and retry")
	case errors.Is(err, leave.ErrLeaveAlreadyProcessed):
		Conflict(w, "Leave application already processed")
	case errors.Is(err, leave.ErrCancelNotAllowed):
		Conflict(w, "Leave application can no longer be cancelled")
	case errors.Is(err, leave.ErrInvalidStage):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrSubstituteNotAllowed):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrNoDecision):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrApproverRoleMismatch):
		Forbidden(w, err.Error())
	case errors.Is(err, leave.ErrNotApplicant):
		Forbidden(w, err.Error())
	case errors.Is(err, leave.ErrSelfApproval):
		Forbidden(w, err.Error())
	case errors.Is(err, leave.ErrOfficerNotInInstitution):
		Forbidden(w, err.Error())
	case errors.Is(err, leave.ErrUnauthorizedAccess):
		Forbidden(w, err.Error())
	case errors.Is(err, leave.ErrSlotNotFound):
		NotFound(w, "Affected slot not found")
	case errors.Is(err, leave.ErrSubstituteNotEligible),
		errors.Is(err, leave.ErrInvalidApplicantType),
		errors.Is(err, leave.ErrRejectionReasonRequired):
		BadRequest(w, err.Error(), nil)

	// Timetable and officer errors
	case errors.Is(err, timetable.ErrInvalidRange), errors.Is(err, timetable.ErrInvalidDay):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, timetable.ErrPeriodNotFound):
		NotFound(w, "Period not found")
	case errors.Is(err, officer.ErrOfficerNotFound):
		NotFound(w, "Officer not found")
	case errors.Is(err, officer.ErrOfficerInactive):
		Forbidden(w, err.Error())

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn), errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrNotCheckedIn), errors.Is(err, attendance.ErrCheckOutBeforeCheckIn):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrUnauthorized):
		Forbidden(w, err.Error())

	// Payroll domain errors
	case errors.Is(err, payroll.ErrPayrollRecordNotFound):
		NotFound(w, "Payroll record not found")
	case errors.Is(err, payroll.ErrInvalidPeriod),
		errors.Is(err, payroll.ErrInvalidDivisor),
		errors.Is(err, payroll.ErrInvalidAttendance),
		errors.Is(err, payroll.ErrOfficerHasNoSalary):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrUnauthorizedAccess):
		Forbidden(w, err.Error())

	// Account errors
	case errors.Is(err, user.ErrInvalidCredentials), errors.Is(err, jwt.ErrInvalidClaims):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrCallerRoleNotAllowed), errors.Is(err, user.ErrInstitutionScope):
		Forbidden(w, err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrProfileNotFound), errors.Is(err, user.ErrRoleNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrResetTokenNotFound), errors.Is(err, user.ErrResetTokenInvalid):
		BadRequest(w, user.ErrResetTokenInvalid.Error(), nil)
	case errors.Is(err, user.ErrInvalidPasswordLength):
		BadRequest(w, err.Error(), nil)

	// Recruitment errors
	case errors.Is(err, recruitment.ErrJobPostingNotFound):
		NotFound(w, "Job posting not found")
	case errors.Is(err, recruitment.ErrStageOrderExists):
		Conflict(w, err.Error())

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
