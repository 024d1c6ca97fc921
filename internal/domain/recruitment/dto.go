package recruitment

import (
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/pkg/validator"
)

type CreateJobPostingRequest struct {
	Title          string  `json:"title"`
	Department     *string `json:"department,omitempty"`
	Description    *string `json:"description,omitempty"`
	EmploymentType string  `json:"employment_type"`
}

func (r *CreateJobPostingRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Title) {
		errs.Add("title", "title is required")
	} else if len(r.Title) > 255 {
		errs.Add("title", "title must not exceed 255 characters")
	}
	if !EmploymentType(r.EmploymentType).IsValid() {
		errs.Add("employment_type", "employment_type must be one of: full_time, part_time, contract, internship")
	}
	return errs.Err()
}

type InterviewStageResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	StageOrder int    `json:"stage_order"`
}

type JobPostingResponse struct {
	ID             string                   `json:"id"`
	Title          string                   `json:"title"`
	Department     *string                  `json:"department,omitempty"`
	Description    *string                  `json:"description,omitempty"`
	EmploymentType string                   `json:"employment_type"`
	Status         string                   `json:"status"`
	CreatedBy      string                   `json:"created_by"`
	CreatedAt      string                   `json:"created_at"`
	Stages         []InterviewStageResponse `json:"stages"`
}

func ToResponse(p JobPosting) JobPostingResponse {
	resp := JobPostingResponse{
		ID:             p.ID,
		Title:          p.Title,
		Department:     p.Department,
		Description:    p.Description,
		EmploymentType: string(p.EmploymentType),
		Status:         string(p.Status),
		CreatedBy:      p.CreatedBy,
		CreatedAt:      p.CreatedAt.Format(time.RFC3339),
		Stages:         make([]InterviewStageResponse, 0, len(p.Stages)),
	}
	for _, s := range p.Stages {
		resp.Stages = append(resp.Stages, InterviewStageResponse{ID: s.ID, Name: s.Name, StageOrder: s.StageOrder})
	}
	return resp
}
