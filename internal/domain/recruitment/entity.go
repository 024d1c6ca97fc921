package recruitment

import "time"

type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentPartTime   EmploymentType = "part_time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
)

func (t EmploymentType) IsValid() bool {
	switch t {
	case EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentInternship:
		return true
	}
	return false
}

type PostingStatus string

const (
	PostingOpen   PostingStatus = "open"
	PostingClosed PostingStatus = "closed"
)

type JobPosting struct {
	ID             string
	Title          string
	Department     *string
	Description    *string
	EmploymentType EmploymentType
	Status         PostingStatus
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Stages []InterviewStage
}

type InterviewStage struct {
	ID           string
	JobPostingID string
	Name         string
	StageOrder   int
	CreatedAt    time.Time
}

// DefaultStageNames is the pipeline every new posting starts with.
var DefaultStageNames = []string{"Screening", "Technical Interview", "HR Interview", "Offer"}

// DefaultStages builds the default pipeline for a posting, ordered from 1.
func DefaultStages(postingID string) []InterviewStage {
	stages := make([]InterviewStage, len(DefaultStageNames))
	for i, name := range DefaultStageNames {
		stages[i] = InterviewStage{JobPostingID: postingID, Name: name, StageOrder: i + 1}
	}
	return stages
}
