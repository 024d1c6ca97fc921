package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/officer"
)

type OfficerRepository struct {
	mu       sync.RWMutex
	officers map[string]officer.Officer
}

func NewOfficerRepository() *OfficerRepository {
	return &OfficerRepository{officers: make(map[string]officer.Officer)}
}

var _ officer.OfficerRepository = (*OfficerRepository)(nil)

func (r *OfficerRepository) Create(ctx context.Context, o officer.Officer) (officer.Officer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.ID == "" {
		o.ID = newID()
	}
	if o.Status == "" {
		o.Status = officer.StatusActive
	}
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now
	r.officers[o.ID] = o

	id := o.ID
	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.officers, id)
	})
	return o, nil
}

func (r *OfficerRepository) GetByID(_ context.Context, id string) (officer.Officer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.officers[id]
	if !ok {
		return officer.Officer{}, officer.ErrOfficerNotFound
	}
	return o, nil
}

func (r *OfficerRepository) filter(keep func(officer.Officer) bool) []officer.Officer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []officer.Officer
	for _, o := range r.officers {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out
}

func (r *OfficerRepository) ListActive(_ context.Context) ([]officer.Officer, error) {
	return r.filter(officer.Officer.IsActive), nil
}

func (r *OfficerRepository) ListActiveByInstitution(_ context.Context, institutionID string) ([]officer.Officer, error) {
	return r.filter(func(o officer.Officer) bool {
		return o.IsActive() && o.AssignedTo(institutionID)
	}), nil
}
