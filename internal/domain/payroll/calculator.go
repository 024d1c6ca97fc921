package payroll

import (
	"github.com/shopspring/decimal"
)

var (
	pfRate        = decimal.RequireFromString("0.12")
	pfWageCeiling = decimal.NewFromInt(15000)
	ptThreshold   = decimal.NewFromInt(10000)
	ptAmount      = decimal.NewFromInt(200)
	tdsThreshold  = decimal.NewFromInt(50000)
	tdsRate       = decimal.RequireFromString("0.05")
)

// CalculationInput holds everything Calculate needs. DivisorDays is the
// pro-ration denominator chosen by the caller; it is never inferred.
type CalculationInput struct {
	Config        SalaryConfig
	MonthlySalary decimal.Decimal
	PresentDays   int
	DivisorDays   int
	OvertimeHours decimal.Decimal
}

type CalculationResult struct {
	Components      []SalaryComponent
	Deductions      []Deduction
	GrossSalary     decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal
}

// Calculate pro-rates each salary component by present/divisor days, adds
// overtime and applies statutory deductions against the gross.
func Calculate(in CalculationInput) (CalculationResult, error) {
	if in.DivisorDays <= 0 {
		return CalculationResult{}, ErrInvalidDivisor
	}
	if in.PresentDays < 0 || in.OvertimeHours.IsNegative() || in.MonthlySalary.IsNegative() {
		return CalculationResult{}, ErrInvalidAttendance
	}

	present := decimal.NewFromInt(int64(in.PresentDays))
	divisor := decimal.NewFromInt(int64(in.DivisorDays))

	var (
		result CalculationResult
		basic  decimal.Decimal
	)
	gross := decimal.Zero

	for _, share := range in.Config.Shares {
		amount := in.MonthlySalary.Mul(share.Share).Mul(present).Div(divisor).Round(0)
		if share.Name == ComponentBasicPay {
			basic = amount
		}
		result.Components = append(result.Components, SalaryComponent{Name: share.Name, Amount: amount})
		gross = gross.Add(amount)
	}

	if in.OvertimeHours.IsPositive() {
		overtime := OvertimePay(in.Config, in.MonthlySalary, in.DivisorDays, in.OvertimeHours)
		result.Components = append(result.Components, SalaryComponent{Name: ComponentOvertime, Amount: overtime})
		gross = gross.Add(overtime)
	}

	result.Deductions = Deductions(basic, gross)
	total := decimal.Zero
	for _, d := range result.Deductions {
		total = total.Add(d.Amount)
	}

	result.GrossSalary = gross
	result.TotalDeductions = total
	result.NetSalary = gross.Sub(total)
	return result, nil
}

// OvertimePay is hours × hourly rate × multiplier, where the hourly rate is
// monthly / (divisor days × standard hours).
func OvertimePay(cfg SalaryConfig, monthly decimal.Decimal, divisorDays int, hours decimal.Decimal) decimal.Decimal {
	hoursPerDay := cfg.StandardHoursPerDay
	if hoursPerDay <= 0 {
		hoursPerDay = 8
	}
	hourly := monthly.Div(decimal.NewFromInt(int64(divisorDays * hoursPerDay)))
	return hours.Mul(hourly).Mul(cfg.OvertimeMultiplier).Round(0)
}

// Deductions computes PF, professional tax and TDS. PF applies to basic pay
// capped at the wage ceiling; the taxes key off gross.
func Deductions(basic, gross decimal.Decimal) []Deduction {
	var out []Deduction

	if basic.IsPositive() {
		pf := decimal.Min(basic, pfWageCeiling).Mul(pfRate).Round(0)
		out = append(out, Deduction{Name: DeductionPF, Amount: pf})
	}
	if gross.GreaterThan(ptThreshold) {
		out = append(out, Deduction{Name: DeductionProfessionalTax, Amount: ptAmount})
	}
	if gross.GreaterThan(tdsThreshold) {
		out = append(out, Deduction{Name: DeductionTDS, Amount: gross.Mul(tdsRate).Round(0)})
	}
	return out
}
