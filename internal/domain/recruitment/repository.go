package recruitment

import "context"

// JobPostingRepository - interface for job_postings and interview_stages tables
type JobPostingRepository interface {
	Create(ctx context.Context, p JobPosting) (JobPosting, error)
	GetByID(ctx context.Context, id string) (JobPosting, error)
	CreateStages(ctx context.Context, stages []InterviewStage) ([]InterviewStage, error)
	ListStages(ctx context.Context, postingID string) ([]InterviewStage, error)
}
