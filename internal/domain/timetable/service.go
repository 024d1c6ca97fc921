package timetable

import (
	"context"
	"time"
)

// SubstituteService resolves the slots vacated by a leave and the staff who
// could cover them. It fans out concurrent repository reads, so callers run
// it outside a Transactor unit of work.
type SubstituteService interface {
	AffectedSlots(ctx context.Context, officerID, institutionID string, start, end time.Time) ([]AffectedSlot, error)
	AvailableSubstitutes(ctx context.Context, req AvailableSubstitutesRequest) ([]AvailableSubstitute, error)
}
