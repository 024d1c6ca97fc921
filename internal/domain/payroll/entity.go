package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// DivisorBasis selects which day count pro-rates the monthly salary.
type DivisorBasis string

const (
	DivisorCalendarDays DivisorBasis = "calendar_days"
	DivisorWorkingDays  DivisorBasis = "working_days"
)

func (b DivisorBasis) IsValid() bool {
	return b == DivisorCalendarDays || b == DivisorWorkingDays
}

type ComponentName string

const (
	ComponentBasicPay         ComponentName = "basic_pay"
	ComponentHRA              ComponentName = "hra"
	ComponentDA               ComponentName = "da"
	ComponentSpecialAllowance ComponentName = "special_allowance"
	ComponentOvertime         ComponentName = "overtime"
)

type DeductionName string

const (
	DeductionPF              DeductionName = "pf"
	DeductionProfessionalTax DeductionName = "professional_tax"
	DeductionTDS             DeductionName = "tds"
)

type SalaryComponent struct {
	Name   ComponentName   `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type Deduction struct {
	Name   DeductionName   `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// StaffPayrollRecord is one officer's computed pay for a month.
type StaffPayrollRecord struct {
	ID          string
	OfficerID   string
	OfficerName string
	Position    string
	PeriodMonth int
	PeriodYear  int

	DivisorBasis DivisorBasis
	DivisorDays  int

	WorkingDays   int
	PresentDays   int
	AbsentDays    int
	LeaveDays     int
	OvertimeHours decimal.Decimal

	MonthlySalary   decimal.Decimal
	Components      []SalaryComponent
	Deductions      []Deduction
	GrossSalary     decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal

	GeneratedAt time.Time
}
