package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/attendance"
)

type attendanceKey struct {
	officerID string
	date      string
}

type AttendanceRepository struct {
	mu   sync.RWMutex
	rows map[attendanceKey]attendance.OfficerAttendance
}

func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{rows: make(map[attendanceKey]attendance.OfficerAttendance)}
}

var _ attendance.AttendanceRepository = (*AttendanceRepository)(nil)

func keyOf(officerID string, date time.Time) attendanceKey {
	return attendanceKey{officerID: officerID, date: attendance.DateOf(date).Format("2006-01-02")}
}

func (r *AttendanceRepository) Upsert(ctx context.Context, a attendance.OfficerAttendance) (attendance.OfficerAttendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := keyOf(a.OfficerID, a.Date)
	prev, existed := r.rows[key]

	now := time.Now()
	a.Date = attendance.DateOf(a.Date)
	if existed {
		a.ID = prev.ID
		a.CreatedAt = prev.CreatedAt
	} else {
		a.ID = newID()
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	r.rows[key] = a

	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existed {
			r.rows[key] = prev
		} else {
			delete(r.rows, key)
		}
	})
	return a, nil
}

func (r *AttendanceRepository) GetByOfficerDate(_ context.Context, officerID string, date time.Time) (attendance.OfficerAttendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.rows[keyOf(officerID, date)]
	if !ok {
		return attendance.OfficerAttendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r *AttendanceRepository) ListByOfficerRange(_ context.Context, officerID string, from, to time.Time) ([]attendance.OfficerAttendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	from, to = attendance.DateOf(from), attendance.DateOf(to)
	var out []attendance.OfficerAttendance
	for _, a := range r.rows {
		if a.OfficerID != officerID || a.Date.Before(from) || a.Date.After(to) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *AttendanceRepository) ListOpenBefore(_ context.Context, before time.Time) ([]attendance.OfficerAttendance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	before = attendance.DateOf(before)
	var out []attendance.OfficerAttendance
	for _, a := range r.rows {
		if a.CheckInAt != nil && a.CheckOutAt == nil && a.Date.Before(before) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
