package payroll

import "errors"

var (
	ErrPayrollRecordNotFound = errors.New("payroll record not found")
	ErrInvalidPeriod         = errors.New("invalid payroll period")
	ErrInvalidDivisor        = errors.New("divisor days must be positive")
	ErrInvalidAttendance     = errors.New("attendance figures must not be negative")
	ErrOfficerHasNoSalary    = errors.New("officer has no monthly salary configured")
	ErrUnauthorizedAccess    = errors.New("unauthorized to access this payroll record")
)
