package attendance

import (
	"context"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
)

type AttendanceService interface {
	CheckIn(ctx context.Context, caller access.Principal, req CheckInRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, caller access.Principal) (AttendanceResponse, error)
	Mark(ctx context.Context, req MarkAttendanceRequest) (AttendanceResponse, error)
	MonthlySummary(ctx context.Context, caller access.Principal, q SummaryQuery) (OfficerAttendanceRecord, error)
	// CloseStaleShifts closes shifts left open on earlier days and returns how many it closed.
	CloseStaleShifts(ctx context.Context) (int, error)
}
