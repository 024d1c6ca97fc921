package payroll

import (
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== CALCULATION DTOs ==========

type CalculatePayrollRequest struct {
	Position      string           `json:"position"`
	MonthlySalary *decimal.Decimal `json:"monthly_salary,omitempty"`
	PresentDays   int              `json:"present_days"`
	DivisorDays   int              `json:"divisor_days"`
	OvertimeHours decimal.Decimal  `json:"overtime_hours"`
}

func (r *CalculatePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.MonthlySalary != nil && !r.MonthlySalary.IsPositive() {
		errs.Add("monthly_salary", "must be positive")
	}
	if r.PresentDays < 0 {
		errs.Add("present_days", "must be non-negative")
	}
	if r.DivisorDays <= 0 {
		errs.Add("divisor_days", "is required and must be positive")
	} else if r.PresentDays > r.DivisorDays {
		errs.Add("present_days", "must not exceed divisor_days")
	}
	if r.OvertimeHours.IsNegative() {
		errs.Add("overtime_hours", "must be non-negative")
	}

	return errs.Err()
}

type CalculationResponse struct {
	Position        string            `json:"position"`
	MonthlySalary   decimal.Decimal   `json:"monthly_salary"`
	PresentDays     int               `json:"present_days"`
	DivisorDays     int               `json:"divisor_days"`
	OvertimeHours   decimal.Decimal   `json:"overtime_hours"`
	Components      []SalaryComponent `json:"components"`
	Deductions      []Deduction       `json:"deductions"`
	GrossSalary     decimal.Decimal   `json:"gross_salary"`
	TotalDeductions decimal.Decimal   `json:"total_deductions"`
	NetSalary       decimal.Decimal   `json:"net_salary"`
}

// ========== GENERATION DTOs ==========

type GeneratePayrollRequest struct {
	PeriodMonth  int      `json:"period_month"`
	PeriodYear   int      `json:"period_year"`
	DivisorBasis string   `json:"divisor_basis"`
	OfficerIDs   []string `json:"officer_ids,omitempty"`
}

func (r *GeneratePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.PeriodMonth < 1 || r.PeriodMonth > 12 {
		errs.Add("period_month", "must be between 1 and 12")
	}
	if r.PeriodYear < 2000 || r.PeriodYear > 2100 {
		errs.Add("period_year", "must be between 2000 and 2100")
	}
	if !DivisorBasis(r.DivisorBasis).IsValid() {
		errs.Add("divisor_basis", "is required and must be one of: calendar_days, working_days")
	}
	for _, id := range r.OfficerIDs {
		if !validator.IsValidUUID(id) {
			errs.Add("officer_ids", "must contain valid UUIDs")
			break
		}
	}

	return errs.Err()
}

// ========== RECORD DTOs ==========

type PayrollFilter struct {
	OfficerID   *string
	PeriodMonth *int
	PeriodYear  *int
	Page        int
	Limit       int
}

func (f *PayrollFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

func (f PayrollFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type PayrollRecordResponse struct {
	ID              string            `json:"id"`
	OfficerID       string            `json:"officer_id"`
	OfficerName     string            `json:"officer_name"`
	Position        string            `json:"position"`
	PeriodMonth     int               `json:"period_month"`
	PeriodYear      int               `json:"period_year"`
	DivisorBasis    string            `json:"divisor_basis"`
	DivisorDays     int               `json:"divisor_days"`
	WorkingDays     int               `json:"working_days"`
	PresentDays     int               `json:"present_days"`
	AbsentDays      int               `json:"absent_days"`
	LeaveDays       int               `json:"leave_days"`
	OvertimeHours   decimal.Decimal   `json:"overtime_hours"`
	MonthlySalary   decimal.Decimal   `json:"monthly_salary"`
	Components      []SalaryComponent `json:"components"`
	Deductions      []Deduction       `json:"deductions"`
	GrossSalary     decimal.Decimal   `json:"gross_salary"`
	TotalDeductions decimal.Decimal   `json:"total_deductions"`
	NetSalary       decimal.Decimal   `json:"net_salary"`
	GeneratedAt     string            `json:"generated_at"`
}

type ListPayrollRecordResponse struct {
	Records []PayrollRecordResponse `json:"records"`
	Total   int64                   `json:"total"`
	Page    int                     `json:"page"`
	Limit   int                     `json:"limit"`
}

func ToRecordResponse(r StaffPayrollRecord) PayrollRecordResponse {
	return PayrollRecordResponse{
		ID:              r.ID,
		OfficerID:       r.OfficerID,
		OfficerName:     r.OfficerName,
		Position:        r.Position,
		PeriodMonth:     r.PeriodMonth,
		PeriodYear:      r.PeriodYear,
		DivisorBasis:    string(r.DivisorBasis),
		DivisorDays:     r.DivisorDays,
		WorkingDays:     r.WorkingDays,
		PresentDays:     r.PresentDays,
		AbsentDays:      r.AbsentDays,
		LeaveDays:       r.LeaveDays,
		OvertimeHours:   r.OvertimeHours,
		MonthlySalary:   r.MonthlySalary,
		Components:      r.Components,
		Deductions:      r.Deductions,
		GrossSalary:     r.GrossSalary,
		TotalDeductions: r.TotalDeductions,
		NetSalary:       r.NetSalary,
		GeneratedAt:     r.GeneratedAt.Format(time.RFC3339),
	}
}
