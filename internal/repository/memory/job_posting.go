package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/recruitment"
)

type JobPostingRepository struct {
	mu       sync.RWMutex
	postings map[string]recruitment.JobPosting
	stages   map[string][]recruitment.InterviewStage
}

func NewJobPostingRepository() *JobPostingRepository {
	return &JobPostingRepository{
		postings: make(map[string]recruitment.JobPosting),
		stages:   make(map[string][]recruitment.InterviewStage),
	}
}

var _ recruitment.JobPostingRepository = (*JobPostingRepository)(nil)

func (r *JobPostingRepository) Create(ctx context.Context, p recruitment.JobPosting) (recruitment.JobPosting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	p.ID = newID()
	p.CreatedAt, p.UpdatedAt = now, now
	p.Stages = nil
	r.postings[p.ID] = p

	id := p.ID
	onRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.postings, id)
		delete(r.stages, id)
	})
	return p, nil
}

func (r *JobPostingRepository) GetByID(_ context.Context, id string) (recruitment.JobPosting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.postings[id]
	if !ok {
		return recruitment.JobPosting{}, recruitment.ErrJobPostingNotFound
	}
	return p, nil
}

func (r *JobPostingRepository) CreateStages(ctx context.Context, stages []recruitment.InterviewStage) ([]recruitment.InterviewStage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]recruitment.InterviewStage, 0, len(stages))
	for _, s := range stages {
		if _, ok := r.postings[s.JobPostingID]; !ok {
			return nil, recruitment.ErrJobPostingNotFound
		}
		for _, existing := range r.stages[s.JobPostingID] {
			if existing.StageOrder == s.StageOrder {
				return nil, recruitment.ErrStageOrderExists
			}
		}
		s.ID = newID()
		s.CreatedAt = time.Now()
		r.stages[s.JobPostingID] = append(r.stages[s.JobPostingID], s)
		out = append(out, s)

		stage := s
		onRollback(ctx, func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			list := r.stages[stage.JobPostingID]
			for i, existing := range list {
				if existing.ID == stage.ID {
					r.stages[stage.JobPostingID] = append(list[:i], list[i+1:]...)
					return
				}
			}
		})
	}
	return out, nil
}

func (r *JobPostingRepository) ListStages(_ context.Context, postingID string) ([]recruitment.InterviewStage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]recruitment.InterviewStage(nil), r.stages[postingID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].StageOrder < out[j].StageOrder })
	return out, nil
}
