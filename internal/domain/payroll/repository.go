package payroll

import "context"

// StaffPayrollRepository - interface for staff_payroll_records table
type StaffPayrollRepository interface {
	// Upsert replaces the officer's record for the same month and year.
	Upsert(ctx context.Context, record StaffPayrollRecord) (StaffPayrollRecord, error)
	GetByID(ctx context.Context, id string) (StaffPayrollRecord, error)
	List(ctx context.Context, filter PayrollFilter) ([]StaffPayrollRecord, int64, error)
}
