package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/recruitment"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type jobPostingRepositoryImpl struct {
	db *database.DB
}

func NewJobPostingRepository(db *database.DB) recruitment.JobPostingRepository {
	return &jobPostingRepositoryImpl{db: db}
}

func (r *jobPostingRepositoryImpl) Create(ctx context.Context, p recruitment.JobPosting) (recruitment.JobPosting, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO job_postings (title, department, description, employment_type, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query, p.Title, p.Department, p.Description, p.EmploymentType, p.Status, p.CreatedBy).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return recruitment.JobPosting{}, fmt.Errorf("insert job posting: %w", err)
	}
	return p, nil
}

func (r *jobPostingRepositoryImpl) GetByID(ctx context.Context, id string) (recruitment.JobPosting, error) {
	q := GetQuerier(ctx, r.db)

	var p recruitment.JobPosting
	err := q.QueryRow(ctx, `
		SELECT id, title, department, description, employment_type, status, created_by, created_at, updated_at
		FROM job_postings WHERE id = $1
	`, id).Scan(&p.ID, &p.Title, &p.Department, &p.Description, &p.EmploymentType, &p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return recruitment.JobPosting{}, recruitment.ErrJobPostingNotFound
		}
		return recruitment.JobPosting{}, err
	}
	return p, nil
}

func (r *jobPostingRepositoryImpl) CreateStages(ctx context.Context, stages []recruitment.InterviewStage) ([]recruitment.InterviewStage, error) {
	q := GetQuerier(ctx, r.db)

	out := make([]recruitment.InterviewStage, 0, len(stages))
	for _, s := range stages {
		err := q.QueryRow(ctx, `
			INSERT INTO interview_stages (job_posting_id, name, stage_order, created_at)
			VALUES ($1, $2, $3, NOW())
			RETURNING id, created_at
		`, s.JobPostingID, s.Name, s.StageOrder).Scan(&s.ID, &s.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, recruitment.ErrStageOrderExists
			}
			return nil, fmt.Errorf("insert interview stage %q: %w", s.Name, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *jobPostingRepositoryImpl) ListStages(ctx context.Context, postingID string) ([]recruitment.InterviewStage, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, job_posting_id, name, stage_order, created_at
		FROM interview_stages WHERE job_posting_id = $1
		ORDER BY stage_order
	`, postingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stages []recruitment.InterviewStage
	for rows.Next() {
		var s recruitment.InterviewStage
		if err := rows.Scan(&s.ID, &s.JobPostingID, &s.Name, &s.StageOrder, &s.CreatedAt); err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}
	return stages, rows.Err()
}
