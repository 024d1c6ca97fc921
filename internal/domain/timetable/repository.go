package timetable

import "context"

// AssignmentRepository - interface for institution_timetable_assignments table
type AssignmentRepository interface {
	Create(ctx context.Context, a Assignment) (Assignment, error)
	// ListByTeacher returns assignments where the officer is primary, secondary or backup.
	ListByTeacher(ctx context.Context, institutionID, officerID string) ([]Assignment, error)
	ListByInstitutionPeriod(ctx context.Context, institutionID, periodID string) ([]Assignment, error)
}

// PeriodRepository - interface for institution_periods table
type PeriodRepository interface {
	Create(ctx context.Context, p Period) (Period, error)
	ListByInstitution(ctx context.Context, institutionID string) ([]Period, error)
}
