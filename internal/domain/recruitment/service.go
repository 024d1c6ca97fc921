package recruitment

import (
	"context"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
)

type RecruitmentService interface {
	// CreateJobPosting stores the posting and its default stages atomically.
	CreateJobPosting(ctx context.Context, caller access.Principal, req CreateJobPostingRequest) (JobPostingResponse, error)
	GetJobPosting(ctx context.Context, id string) (JobPostingResponse, error)
}
