package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/officer"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const officerSelect = `
	SELECT o.id, o.full_name, o.email, o.position, o.skills, o.status, o.monthly_salary,
		   COALESCE(ARRAY_AGG(oi.institution_id::text) FILTER (WHERE oi.institution_id IS NOT NULL), '{}') AS institution_ids,
		   o.created_at, o.updated_at
	FROM officers o
	LEFT JOIN officer_institutions oi ON oi.officer_id = o.id`

type officerRepositoryImpl struct {
	db *database.DB
}

func NewOfficerRepository(db *database.DB) officer.OfficerRepository {
	return &officerRepositoryImpl{db: db}
}

func scanOfficer(row pgx.Row) (officer.Officer, error) {
	var o officer.Officer
	err := row.Scan(
		&o.ID, &o.FullName, &o.Email, &o.Position, &o.Skills, &o.Status, &o.MonthlySalary,
		&o.InstitutionIDs, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

func (r *officerRepositoryImpl) Create(ctx context.Context, o officer.Officer) (officer.Officer, error) {
	q := GetQuerier(ctx, r.db)

	if o.Skills == nil {
		o.Skills = []string{}
	}
	if o.Status == "" {
		o.Status = officer.StatusActive
	}

	query := `
		INSERT INTO officers (full_name, email, position, skills, status, monthly_salary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	err := q.QueryRow(ctx, query, o.FullName, o.Email, o.Position, o.Skills, o.Status, o.MonthlySalary).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return officer.Officer{}, fmt.Errorf("insert officer: %w", err)
	}

	for _, instID := range o.InstitutionIDs {
		_, err := q.Exec(ctx, `INSERT INTO officer_institutions (officer_id, institution_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, o.ID, instID)
		if err != nil {
			return officer.Officer{}, fmt.Errorf("assign officer to institution: %w", err)
		}
	}
	return o, nil
}

func (r *officerRepositoryImpl) GetByID(ctx context.Context, id string) (officer.Officer, error) {
	q := GetQuerier(ctx, r.db)

	o, err := scanOfficer(q.QueryRow(ctx, officerSelect+` WHERE o.id = $1 GROUP BY o.id`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return officer.Officer{}, officer.ErrOfficerNotFound
		}
		return officer.Officer{}, err
	}
	return o, nil
}

func (r *officerRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]officer.Officer, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var officers []officer.Officer
	for rows.Next() {
		o, err := scanOfficer(rows)
		if err != nil {
			return nil, err
		}
		officers = append(officers, o)
	}
	return officers, rows.Err()
}

func (r *officerRepositoryImpl) ListActive(ctx context.Context) ([]officer.Officer, error) {
	return r.list(ctx, officerSelect+` WHERE o.status = 'active' GROUP BY o.id ORDER BY o.full_name`)
}

func (r *officerRepositoryImpl) ListActiveByInstitution(ctx context.Context, institutionID string) ([]officer.Officer, error) {
	query := officerSelect + `
		WHERE o.status = 'active'
		  AND EXISTS (SELECT 1 FROM officer_institutions x WHERE x.officer_id = o.id AND x.institution_id = $1)
		GROUP BY o.id
		ORDER BY o.full_name`
	return r.list(ctx, query, institutionID)
}
