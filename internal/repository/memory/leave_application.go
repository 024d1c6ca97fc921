package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/leave"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/timetable"
)

type LeaveApplicationRepository struct {
	mu   sync.RWMutex
	apps map[string]leave.LeaveApplication
}

func NewLeaveApplicationRepository() *LeaveApplicationRepository {
	return &LeaveApplicationRepository{apps: make(map[string]leave.LeaveApplication)}
}

var _ leave.LeaveApplicationRepository = (*LeaveApplicationRepository)(nil)

// clone detaches the slices so callers cannot mutate stored state.
func clone(a leave.LeaveApplication) leave.LeaveApplication {
	if a.AffectedSlots != nil {
		a.AffectedSlots = append([]timetable.AffectedSlot(nil), a.AffectedSlots...)
	}
	if a.SubstituteAssignments != nil {
		a.SubstituteAssignments = append([]timetable.SubstituteAssignment(nil), a.SubstituteAssignments...)
	}
	return a
}

func (r *LeaveApplicationRepository) Create(ctx context.Context, a leave.LeaveApplication) (leave.LeaveApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	a.ID = newID()
	a.Version = 1
	a.AppliedAt = now
	a.CreatedAt = now
	a.UpdatedAt = now
	r.apps[a.ID] = clone(a)

	id := a.ID
	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.apps, id)
	})
	return clone(a), nil
}

func (r *LeaveApplicationRepository) GetByID(_ context.Context, id string) (leave.LeaveApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.apps[id]
	if !ok {
		return leave.LeaveApplication{}, leave.ErrLeaveApplicationNotFound
	}
	return clone(a), nil
}

func (r *LeaveApplicationRepository) List(_ context.Context, filter leave.LeaveApplicationFilter) ([]leave.LeaveApplication, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	filter.Normalize()

	var matched []leave.LeaveApplication
	for _, a := range r.apps {
		if filter.OfficerID != nil && a.OfficerID != *filter.OfficerID {
			continue
		}
		if filter.InstitutionID != nil && (a.InstitutionID == nil || *a.InstitutionID != *filter.InstitutionID) {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.ApprovalStage != nil && a.ApprovalStage != *filter.ApprovalStage {
			continue
		}
		if filter.ApplicantType != nil && a.ApplicantType != *filter.ApplicantType {
			continue
		}
		matched = append(matched, clone(a))
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].AppliedAt.Equal(matched[j].AppliedAt) {
			return matched[i].AppliedAt.After(matched[j].AppliedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := filter.Offset()
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *LeaveApplicationRepository) Update(ctx context.Context, a leave.LeaveApplication) (leave.LeaveApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.apps[a.ID]
	if !ok {
		return leave.LeaveApplication{}, leave.ErrLeaveApplicationNotFound
	}
	if current.Version != a.Version {
		return leave.LeaveApplication{}, leave.ErrVersionConflict
	}

	a.Version = current.Version + 1
	a.UpdatedAt = time.Now()
	r.apps[a.ID] = clone(a)

	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.apps[current.ID] = current
	})
	return clone(a), nil
}
