package attendance

import (
	"context"
	"time"
)

// AttendanceRepository - interface for officer_attendance table
type AttendanceRepository interface {
	// Upsert writes the row keyed by (officer_id, date).
	Upsert(ctx context.Context, a OfficerAttendance) (OfficerAttendance, error)
	GetByOfficerDate(ctx context.Context, officerID string, date time.Time) (OfficerAttendance, error)
	ListByOfficerRange(ctx context.Context, officerID string, from, to time.Time) ([]OfficerAttendance, error)
	// ListOpenBefore returns checked-in rows without a check-out dated before the given day.
	ListOpenBefore(ctx context.Context, before time.Time) ([]OfficerAttendance, error)
}
