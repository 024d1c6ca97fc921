package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/payroll"
)

type payrollKey struct {
	officerID   string
	month, year int
}

type PayrollRepository struct {
	mu      sync.RWMutex
	records map[string]payroll.StaffPayrollRecord
	byKey   map[payrollKey]string
}

func NewPayrollRepository() *PayrollRepository {
	return &PayrollRepository{
		records: make(map[string]payroll.StaffPayrollRecord),
		byKey:   make(map[payrollKey]string),
	}
}

var _ payroll.StaffPayrollRepository = (*PayrollRepository)(nil)

func (r *PayrollRepository) Upsert(ctx context.Context, rec payroll.StaffPayrollRecord) (payroll.StaffPayrollRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := payrollKey{officerID: rec.OfficerID, month: rec.PeriodMonth, year: rec.PeriodYear}
	prevID, existed := r.byKey[key]
	prev := r.records[prevID]

	if existed {
		rec.ID = prevID
	} else {
		rec.ID = newID()
	}
	rec.GeneratedAt = time.Now()
	r.records[rec.ID] = rec
	r.byKey[key] = rec.ID

	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existed {
			r.records[prevID] = prev
			return
		}
		delete(r.records, rec.ID)
		delete(r.byKey, key)
	})
	return rec, nil
}

func (r *PayrollRepository) GetByID(_ context.Context, id string) (payroll.StaffPayrollRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return payroll.StaffPayrollRecord{}, payroll.ErrPayrollRecordNotFound
	}
	return rec, nil
}

func (r *PayrollRepository) List(_ context.Context, filter payroll.PayrollFilter) ([]payroll.StaffPayrollRecord, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	filter.Normalize()

	var matched []payroll.StaffPayrollRecord
	for _, rec := range r.records {
		if filter.OfficerID != nil && rec.OfficerID != *filter.OfficerID {
			continue
		}
		if filter.PeriodMonth != nil && rec.PeriodMonth != *filter.PeriodMonth {
			continue
		}
		if filter.PeriodYear != nil && rec.PeriodYear != *filter.PeriodYear {
			continue
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.PeriodYear != b.PeriodYear {
			return a.PeriodYear > b.PeriodYear
		}
		if a.PeriodMonth != b.PeriodMonth {
			return a.PeriodMonth > b.PeriodMonth
		}
		return a.OfficerName < b.OfficerName
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
