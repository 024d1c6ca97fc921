package payroll

import "github.com/shopspring/decimal"

const DefaultPosition = "default"

type ComponentShare struct {
	Name  ComponentName
	Share decimal.Decimal
}

// SalaryConfig is the static rate card for a position.
type SalaryConfig struct {
	Position            string
	MonthlySalary       decimal.Decimal
	Shares              []ComponentShare
	OvertimeMultiplier  decimal.Decimal
	StandardHoursPerDay int
}

func standardShares() []ComponentShare {
	return []ComponentShare{
		{Name: ComponentBasicPay, Share: decimal.RequireFromString("0.40")},
		{Name: ComponentHRA, Share: decimal.RequireFromString("0.20")},
		{Name: ComponentDA, Share: decimal.RequireFromString("0.10")},
		{Name: ComponentSpecialAllowance, Share: decimal.RequireFromString("0.30")},
	}
}

func newConfig(position string, monthly int64) SalaryConfig {
	return SalaryConfig{
		Position:            position,
		MonthlySalary:       decimal.NewFromInt(monthly),
		Shares:              standardShares(),
		OvertimeMultiplier:  decimal.RequireFromString("1.5"),
		StandardHoursPerDay: 8,
	}
}

// RateTable maps a position to its salary configuration.
type RateTable map[string]SalaryConfig

// DefaultRateTable is the built-in per-position rate card.
func DefaultRateTable() RateTable {
	return RateTable{
		DefaultPosition:      newConfig(DefaultPosition, 30000),
		"trainer":            newConfig("trainer", 35000),
		"senior_trainer":     newConfig("senior_trainer", 50000),
		"innovation_officer": newConfig("innovation_officer", 45000),
		"coordinator":        newConfig("coordinator", 60000),
		"program_manager":    newConfig("program_manager", 100000),
	}
}

// For returns the position's config, falling back to the default entry.
func (t RateTable) For(position string) SalaryConfig {
	if cfg, ok := t[position]; ok {
		return cfg
	}
	return t[DefaultPosition]
}
