package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

const StandardHoursPerDay = 8

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLeave   Status = "leave"
)

func (s Status) IsValid() bool {
	return s == StatusPresent || s == StatusAbsent || s == StatusLeave
}

// OfficerAttendance is one officer's attendance row for a date.
type OfficerAttendance struct {
	ID            string
	OfficerID     string
	InstitutionID *string
	Date          time.Time
	Status        Status
	CheckInAt     *time.Time
	CheckOutAt    *time.Time
	WorkedHours   decimal.Decimal
	OvertimeHours decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CloseShift sets check-out time and derives worked and overtime hours.
func (a *OfficerAttendance) CloseShift(at time.Time) error {
	if a.CheckInAt == nil {
		return ErrNotCheckedIn
	}
	if a.CheckOutAt != nil {
		return ErrAlreadyCheckedOut
	}
	if at.Before(*a.CheckInAt) {
		return ErrCheckOutBeforeCheckIn
	}

	minutes := decimal.NewFromInt(int64(at.Sub(*a.CheckInAt) / time.Minute))
	worked := minutes.Div(decimal.NewFromInt(60)).Round(2)
	overtime := worked.Sub(decimal.NewFromInt(StandardHoursPerDay))
	if overtime.IsNegative() {
		overtime = decimal.Zero
	}

	a.CheckOutAt = &at
	a.WorkedHours = worked
	a.OvertimeHours = overtime
	a.UpdatedAt = at
	return nil
}

// OfficerAttendanceRecord aggregates a month of attendance for payroll.
type OfficerAttendanceRecord struct {
	OfficerID     string          `json:"officer_id"`
	PeriodMonth   int             `json:"period_month"`
	PeriodYear    int             `json:"period_year"`
	CalendarDays  int             `json:"calendar_days"`
	WorkingDays   int             `json:"working_days"`
	PresentDays   int             `json:"present_days"`
	AbsentDays    int             `json:"absent_days"`
	LeaveDays     int             `json:"leave_days"`
	OvertimeHours decimal.Decimal `json:"overtime_hours"`
}
