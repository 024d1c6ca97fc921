package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/attendance"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	id, officer_id, institution_id, date, status, check_in_at, check_out_at,
	worked_hours, overtime_hours, created_at, updated_at`

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

func scanAttendance(row pgx.Row) (attendance.OfficerAttendance, error) {
	var a attendance.OfficerAttendance
	err := row.Scan(
		&a.ID, &a.OfficerID, &a.InstitutionID, &a.Date, &a.Status, &a.CheckInAt, &a.CheckOutAt,
		&a.WorkedHours, &a.OvertimeHours, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func (r *attendanceRepositoryImpl) Upsert(ctx context.Context, a attendance.OfficerAttendance) (attendance.OfficerAttendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO officer_attendance (
			officer_id, institution_id, date, status, check_in_at, check_out_at,
			worked_hours, overtime_hours, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		ON CONFLICT (officer_id, date) DO UPDATE SET
			institution_id = EXCLUDED.institution_id,
			status = EXCLUDED.status,
			check_in_at = EXCLUDED.check_in_at,
			check_out_at = EXCLUDED.check_out_at,
			worked_hours = EXCLUDED.worked_hours,
			overtime_hours = EXCLUDED.overtime_hours,
			updated_at = NOW()
		RETURNING ` + attendanceColumns

	saved, err := scanAttendance(q.QueryRow(ctx, query,
		a.OfficerID, a.InstitutionID, attendance.DateOf(a.Date), a.Status, a.CheckInAt, a.CheckOutAt,
		a.WorkedHours, a.OvertimeHours,
	))
	if err != nil {
		return attendance.OfficerAttendance{}, fmt.Errorf("upsert attendance: %w", err)
	}
	return saved, nil
}

func (r *attendanceRepositoryImpl) GetByOfficerDate(ctx context.Context, officerID string, date time.Time) (attendance.OfficerAttendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM officer_attendance WHERE officer_id = $1 AND date = $2`
	a, err := scanAttendance(q.QueryRow(ctx, query, officerID, attendance.DateOf(date)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.OfficerAttendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.OfficerAttendance{}, err
	}
	return a, nil
}

func (r *attendanceRepositoryImpl) ListByOfficerRange(ctx context.Context, officerID string, from, to time.Time) ([]attendance.OfficerAttendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM officer_attendance
		WHERE officer_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date`
	rows, err := q.Query(ctx, query, officerID, attendance.DateOf(from), attendance.DateOf(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []attendance.OfficerAttendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *attendanceRepositoryImpl) ListOpenBefore(ctx context.Context, before time.Time) ([]attendance.OfficerAttendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM officer_attendance
		WHERE check_in_at IS NOT NULL AND check_out_at IS NULL AND date < $1
		ORDER BY date`
	rows, err := q.Query(ctx, query, attendance.DateOf(before))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []attendance.OfficerAttendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
