package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/payroll"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const payrollColumns = `
	id, officer_id, officer_name, position, period_month, period_year,
	divisor_basis, divisor_days, working_days, present_days, absent_days, leave_days,
	overtime_hours, monthly_salary, components, deductions,
	gross_salary, total_deductions, net_salary, generated_at`

type payrollRepositoryImpl struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.StaffPayrollRepository {
	return &payrollRepositoryImpl{db: db}
}

func scanPayrollRecord(row pgx.Row) (payroll.StaffPayrollRecord, error) {
	var p payroll.StaffPayrollRecord
	err := row.Scan(
		&p.ID, &p.OfficerID, &p.OfficerName, &p.Position, &p.PeriodMonth, &p.PeriodYear,
		&p.DivisorBasis, &p.DivisorDays, &p.WorkingDays, &p.PresentDays, &p.AbsentDays, &p.LeaveDays,
		&p.OvertimeHours, &p.MonthlySalary, &p.Components, &p.Deductions,
		&p.GrossSalary, &p.TotalDeductions, &p.NetSalary, &p.GeneratedAt,
	)
	return p, err
}

func (r *payrollRepositoryImpl) Upsert(ctx context.Context, rec payroll.StaffPayrollRecord) (payroll.StaffPayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	if rec.Components == nil {
		rec.Components = []payroll.SalaryComponent{}
	}
	if rec.Deductions == nil {
		rec.Deductions = []payroll.Deduction{}
	}

	query := `
		INSERT INTO staff_payroll_records (
			officer_id, officer_name, position, period_month, period_year,
			divisor_basis, divisor_days, working_days, present_days, absent_days, leave_days,
			overtime_hours, monthly_salary, components, deductions,
			gross_salary, total_deductions, net_salary, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW())
		ON CONFLICT (officer_id, period_month, period_year) DO UPDATE SET
			officer_name = EXCLUDED.officer_name,
			position = EXCLUDED.position,
			divisor_basis = EXCLUDED.divisor_basis,
			divisor_days = EXCLUDED.divisor_days,
			working_days = EXCLUDED.working_days,
			present_days = EXCLUDED.present_days,
			absent_days = EXCLUDED.absent_days,
			leave_days = EXCLUDED.leave_days,
			overtime_hours = EXCLUDED.overtime_hours,
			monthly_salary = EXCLUDED.monthly_salary,
			components = EXCLUDED.components,
			deductions = EXCLUDED.deductions,
			gross_salary = EXCLUDED.gross_salary,
			total_deductions = EXCLUDED.total_deductions,
			net_salary = EXCLUDED.net_salary,
			generated_at = NOW()
		RETURNING ` + payrollColumns

	saved, err := scanPayrollRecord(q.QueryRow(ctx, query,
		rec.OfficerID, rec.OfficerName, rec.Position, rec.PeriodMonth, rec.PeriodYear,
		rec.DivisorBasis, rec.DivisorDays, rec.WorkingDays, rec.PresentDays, rec.AbsentDays, rec.LeaveDays,
		rec.OvertimeHours, rec.MonthlySalary, rec.Components, rec.Deductions,
		rec.GrossSalary, rec.TotalDeductions, rec.NetSalary,
	))
	if err != nil {
		return payroll.StaffPayrollRecord{}, fmt.Errorf("upsert payroll record: %w", err)
	}
	return saved, nil
}

func (r *payrollRepositoryImpl) GetByID(ctx context.Context, id string) (payroll.StaffPayrollRecord, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanPayrollRecord(q.QueryRow(ctx, `SELECT `+payrollColumns+` FROM staff_payroll_records WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.StaffPayrollRecord{}, payroll.ErrPayrollRecordNotFound
		}
		return payroll.StaffPayrollRecord{}, err
	}
	return rec, nil
}

func (r *payrollRepositoryImpl) List(ctx context.Context, filter payroll.PayrollFilter) ([]payroll.StaffPayrollRecord, int64, error) {
	q := GetQuerier(ctx, r.db)
	filter.Normalize()

	var (
		conds []string
		args  []interface{}
	)
	if filter.OfficerID != nil {
		args = append(args, *filter.OfficerID)
		conds = append(conds, fmt.Sprintf("officer_id = $%d", len(args)))
	}
	if filter.PeriodMonth != nil {
		args = append(args, *filter.PeriodMonth)
		conds = append(conds, fmt.Sprintf("period_month = $%d", len(args)))
	}
	if filter.PeriodYear != nil {
		args = append(args, *filter.PeriodYear)
		conds = append(conds, fmt.Sprintf("period_year = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM staff_payroll_records`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payroll records: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM staff_payroll_records%s ORDER BY period_year DESC, period_month DESC, officer_name LIMIT %d OFFSET %d`,
		payrollColumns, where, filter.Limit, filter.Offset())
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []payroll.StaffPayrollRecord
	for rows.Next() {
		rec, err := scanPayrollRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}
