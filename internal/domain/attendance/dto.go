package attendance

import (
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CheckInRequest struct {
	InstitutionID *string `json:"institution_id,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.InstitutionID != nil && !validator.IsValidUUID(*r.InstitutionID) {
		errs.Add("institution_id", "must be a valid UUID")
	}
	return errs.Err()
}

type MarkAttendanceRequest struct {
	OfficerID string `json:"officer_id"`
	Date      string `json:"date"`
	Status    string `json:"status"`

	date time.Time
}

func (r *MarkAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.OfficerID) {
		errs.Add("officer_id", "must be a valid UUID")
	}
	date, ok := validator.IsValidDate(r.Date)
	if !ok {
		errs.Add("date", "must be in YYYY-MM-DD format")
	}
	if !validator.IsInSlice(r.Status, []string{string(StatusAbsent), string(StatusLeave), string(StatusPresent)}) {
		errs.Add("status", "must be one of: present, absent, leave")
	}

	r.date = date
	return errs.Err()
}

// ParsedDate is valid after Validate succeeds.
func (r *MarkAttendanceRequest) ParsedDate() time.Time {
	return r.date
}

type SummaryQuery struct {
	OfficerID   string
	PeriodMonth int
	PeriodYear  int
}

func (q *SummaryQuery) Validate() error {
	var errs validator.ValidationErrors
	if !validator.IsValidUUID(q.OfficerID) {
		errs.Add("officer_id", "must be a valid UUID")
	}
	if q.PeriodMonth < 1 || q.PeriodMonth > 12 {
		errs.Add("month", "must be between 1 and 12")
	}
	if q.PeriodYear < 2000 || q.PeriodYear > 2100 {
		errs.Add("year", "must be between 2000 and 2100")
	}
	return errs.Err()
}

type AttendanceResponse struct {
	ID            string          `json:"id"`
	OfficerID     string          `json:"officer_id"`
	InstitutionID *string         `json:"institution_id,omitempty"`
	Date          string          `json:"date"`
	Status        string          `json:"status"`
	CheckInAt     *string         `json:"check_in_at,omitempty"`
	CheckOutAt    *string         `json:"check_out_at,omitempty"`
	WorkedHours   decimal.Decimal `json:"worked_hours"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
}

func ToResponse(a OfficerAttendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:            a.ID,
		OfficerID:     a.OfficerID,
		InstitutionID: a.InstitutionID,
		Date:          a.Date.Format(validator.DateLayout),
		Status:        string(a.Status),
		WorkedHours:   a.WorkedHours,
		OvertimeHours: a.OvertimeHours,
	}
	if a.CheckInAt != nil {
		s := a.CheckInAt.Format(time.RFC3339)
		resp.CheckInAt = &s
	}
	if a.CheckOutAt != nil {
		s := a.CheckOutAt.Format(time.RFC3339)
		resp.CheckOutAt = &s
	}
	return resp
}
