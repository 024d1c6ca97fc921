package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/timetable"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const assignmentColumns = `
	id, institution_id, class_id, class_name, subject, room, day, period_id,
	teacher_id, secondary_teacher_id, backup_teacher_id`

type assignmentRepositoryImpl struct {
	db *database.DB
}

func NewAssignmentRepository(db *database.DB) timetable.AssignmentRepository {
	return &assignmentRepositoryImpl{db: db}
}

func scanAssignments(rows pgx.Rows) ([]timetable.Assignment, error) {
	defer rows.Close()

	var out []timetable.Assignment
	for rows.Next() {
		var a timetable.Assignment
		err := rows.Scan(
			&a.ID, &a.InstitutionID, &a.ClassID, &a.ClassName, &a.Subject, &a.Room, &a.Day, &a.PeriodID,
			&a.TeacherID, &a.SecondaryTeacherID, &a.BackupTeacherID,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *assignmentRepositoryImpl) Create(ctx context.Context, a timetable.Assignment) (timetable.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO institution_timetable_assignments (
			institution_id, class_id, class_name, subject, room, day, period_id,
			teacher_id, secondary_teacher_id, backup_teacher_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := q.QueryRow(ctx, query,
		a.InstitutionID, a.ClassID, a.ClassName, a.Subject, a.Room, a.Day, a.PeriodID,
		a.TeacherID, a.SecondaryTeacherID, a.BackupTeacherID,
	).Scan(&a.ID)
	if err != nil {
		return timetable.Assignment{}, fmt.Errorf("insert timetable assignment: %w", err)
	}
	return a, nil
}

func (r *assignmentRepositoryImpl) ListByTeacher(ctx context.Context, institutionID, officerID string) ([]timetable.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + assignmentColumns + `
		FROM institution_timetable_assignments
		WHERE institution_id = $1
		  AND (teacher_id = $2 OR secondary_teacher_id = $2 OR backup_teacher_id = $2)`
	rows, err := q.Query(ctx, query, institutionID, officerID)
	if err != nil {
		return nil, err
	}
	return scanAssignments(rows)
}

// ListByInstitutionPeriod returns every assignment in the period regardless of
// day; callers match the day after normalizing it.
func (r *assignmentRepositoryImpl) ListByInstitutionPeriod(ctx context.Context, institutionID, periodID string) ([]timetable.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + assignmentColumns + `
		FROM institution_timetable_assignments
		WHERE institution_id = $1 AND period_id = $2`
	rows, err := q.Query(ctx, query, institutionID, periodID)
	if err != nil {
		return nil, err
	}
	return scanAssignments(rows)
}

type periodRepositoryImpl struct {
	db *database.DB
}

func NewPeriodRepository(db *database.DB) timetable.PeriodRepository {
	return &periodRepositoryImpl{db: db}
}

func (r *periodRepositoryImpl) Create(ctx context.Context, p timetable.Period) (timetable.Period, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO institution_periods (institution_id, label, start_time, end_time, display_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	if err := q.QueryRow(ctx, query, p.InstitutionID, p.Label, p.StartTime, p.EndTime, p.DisplayOrder).Scan(&p.ID); err != nil {
		return timetable.Period{}, fmt.Errorf("insert period: %w", err)
	}
	return p, nil
}

func (r *periodRepositoryImpl) ListByInstitution(ctx context.Context, institutionID string) ([]timetable.Period, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, institution_id, label, start_time, end_time, display_order
		FROM institution_periods
		WHERE institution_id = $1
		ORDER BY display_order, start_time
	`, institutionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []timetable.Period
	for rows.Next() {
		var p timetable.Period
		if err := rows.Scan(&p.ID, &p.InstitutionID, &p.Label, &p.StartTime, &p.EndTime, &p.DisplayOrder); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}
