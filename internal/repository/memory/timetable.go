package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/timetable"
)

type AssignmentRepository struct {
	mu          sync.RWMutex
	assignments []timetable.Assignment
}

func NewAssignmentRepository() *AssignmentRepository {
	return &AssignmentRepository{}
}

var _ timetable.AssignmentRepository = (*AssignmentRepository)(nil)

func (r *AssignmentRepository) Create(ctx context.Context, a timetable.Assignment) (timetable.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		a.ID = newID()
	}
	r.assignments = append(r.assignments, a)

	id := a.ID
	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, existing := range r.assignments {
			if existing.ID == id {
				r.assignments = append(r.assignments[:i], r.assignments[i+1:]...)
				return
			}
		}
	})
	return a, nil
}

func (r *AssignmentRepository) ListByTeacher(_ context.Context, institutionID, officerID string) ([]timetable.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []timetable.Assignment
	for _, a := range r.assignments {
		if a.InstitutionID != institutionID {
			continue
		}
		if _, ok := a.RoleOf(officerID); ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *AssignmentRepository) ListByInstitutionPeriod(_ context.Context, institutionID, periodID string) ([]timetable.Assignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []timetable.Assignment
	for _, a := range r.assignments {
		if a.InstitutionID == institutionID && a.PeriodID == periodID {
			out = append(out, a)
		}
	}
	return out, nil
}

type PeriodRepository struct {
	mu      sync.RWMutex
	periods []timetable.Period
}

func NewPeriodRepository() *PeriodRepository {
	return &PeriodRepository{}
}

var _ timetable.PeriodRepository = (*PeriodRepository)(nil)

func (r *PeriodRepository) Create(_ context.Context, p timetable.Period) (timetable.Period, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = newID()
	}
	r.periods = append(r.periods, p)
	return p, nil
}

func (r *PeriodRepository) ListByInstitution(_ context.Context, institutionID string) ([]timetable.Period, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []timetable.Period
	for _, p := range r.periods {
		if p.InstitutionID == institutionID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}
