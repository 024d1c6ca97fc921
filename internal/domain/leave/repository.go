package leave

import (
	"context"
)

// LeaveApplicationRepository - interface for leave_applications table
type LeaveApplicationRepository interface {
	Create(ctx context.Context, app LeaveApplication) (LeaveApplication, error)
	GetByID(ctx context.Context, id string) (LeaveApplication, error)
	List(ctx context.Context, filter LeaveApplicationFilter) ([]LeaveApplication, int64, error)
	// Update writes app only if the stored version still equals app.Version and
	// returns the row with its version incremented. A stale version yields
	// ErrVersionConflict.
	Update(ctx context.Context, app LeaveApplication) (LeaveApplication, error)
}
