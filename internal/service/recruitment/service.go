package recruitment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/recruitment"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/database"
)

type RecruitmentServiceImpl struct {
	tx          database.Transactor
	postingRepo recruitment.JobPostingRepository
}

func NewRecruitmentService(tx database.Transactor, postingRepo recruitment.JobPostingRepository) recruitment.RecruitmentService {
	return &RecruitmentServiceImpl{
		tx:          tx,
		postingRepo: postingRepo,
	}
}

// CreateJobPosting implements recruitment.RecruitmentService.
func (s *RecruitmentServiceImpl) CreateJobPosting(ctx context.Context, caller access.Principal, req recruitment.CreateJobPostingRequest) (recruitment.JobPostingResponse, error) {
	if err := req.Validate(); err != nil {
		return recruitment.JobPostingResponse{}, err
	}

	var posting recruitment.JobPosting
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err := s.postingRepo.Create(ctx, recruitment.JobPosting{
			Title:          strings.TrimSpace(req.Title),
			Department:     req.Department,
			Description:    req.Description,
			EmploymentType: recruitment.EmploymentType(req.EmploymentType),
			Status:         recruitment.PostingOpen,
			CreatedBy:      caller.UserID,
		})
		if err != nil {
			return fmt.Errorf("failed to create job posting: %w", err)
		}

		stages, err := s.postingRepo.CreateStages(ctx, recruitment.DefaultStages(created.ID))
		if err != nil {
			return fmt.Errorf("failed to create interview stages: %w", err)
		}

		created.Stages = stages
		posting = created
		return nil
	})
	if err != nil {
		return recruitment.JobPostingResponse{}, err
	}

	slog.Info("Job posting created",
		"job_posting_id", posting.ID,
		"stages", len(posting.Stages),
		"created_by", caller.UserID,
	)
	return recruitment.ToResponse(posting), nil
}

// GetJobPosting implements recruitment.RecruitmentService.
func (s *RecruitmentServiceImpl) GetJobPosting(ctx context.Context, id string) (recruitment.JobPostingResponse, error) {
	posting, err := s.postingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, recruitment.ErrJobPostingNotFound) {
			return recruitment.JobPostingResponse{}, err
		}
		return recruitment.JobPostingResponse{}, fmt.Errorf("failed to get job posting by ID: %w", err)
	}

	posting.Stages, err = s.postingRepo.ListStages(ctx, id)
	if err != nil {
		return recruitment.JobPostingResponse{}, fmt.Errorf("failed to list interview stages: %w", err)
	}
	return recruitment.ToResponse(posting), nil
}
