package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/attendance"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/officer"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/payroll"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/database"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentSummaries bounds attendance lookups during Generate.
const maxConcurrentSummaries = 8

type PayrollServiceImpl struct {
	tx             database.Transactor
	payrollRepo    payroll.StaffPayrollRepository
	officerRepo    officer.OfficerRepository
	attendanceRepo attendance.AttendanceRepository
	rates          payroll.RateTable
	now            func() time.Time
}

func NewPayrollService(
	tx database.Transactor,
	payrollRepo payroll.StaffPayrollRepository,
	officerRepo officer.OfficerRepository,
	attendanceRepo attendance.AttendanceRepository,
	rates payroll.RateTable,
) payroll.PayrollService {
	if rates == nil {
		rates = payroll.DefaultRateTable()
	}
	return &PayrollServiceImpl{
		tx:             tx,
		payrollRepo:    payrollRepo,
		officerRepo:    officerRepo,
		attendanceRepo: attendanceRepo,
		rates:          rates,
		now:            time.Now,
	}
}

// Calculate implements payroll.PayrollService.
func (s *PayrollServiceImpl) Calculate(ctx context.Context, req payroll.CalculatePayrollRequest) (payroll.CalculationResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.CalculationResponse{}, err
	}

	cfg := s.rates.For(req.Position)
	salary := cfg.MonthlySalary
	if req.MonthlySalary != nil {
		salary = *req.MonthlySalary
	}

	result, err := payroll.Calculate(payroll.CalculationInput{
		Config:        cfg,
		MonthlySalary: salary,
		PresentDays:   req.PresentDays,
		DivisorDays:   req.DivisorDays,
		OvertimeHours: req.OvertimeHours,
	})
	if err != nil {
		return payroll.CalculationResponse{}, err
	}

	return payroll.CalculationResponse{
		Position:        cfg.Position,
		MonthlySalary:   salary,
		PresentDays:     req.PresentDays,
		DivisorDays:     req.DivisorDays,
		OvertimeHours:   req.OvertimeHours,
		Components:      result.Components,
		Deductions:      result.Deductions,
		GrossSalary:     result.GrossSalary,
		TotalDeductions: result.TotalDeductions,
		NetSalary:       result.NetSalary,
	}, nil
}

// Generate builds and stores one payroll record per officer for the month.
// Attendance is summarized concurrently; all records are written in one
// transaction so a failed run leaves the previous records in place.
func (s *PayrollServiceImpl) Generate(ctx context.Context, req payroll.GeneratePayrollRequest) ([]payroll.PayrollRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	officers, err := s.officersFor(ctx, req.OfficerIDs)
	if err != nil {
		return nil, err
	}

	basis := payroll.DivisorBasis(req.DivisorBasis)
	generatedAt := s.now()
	records := make([]payroll.StaffPayrollRecord, len(officers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSummaries)
	for i, o := range officers {
		g.Go(func() error {
			rec, err := s.buildRecord(gctx, o, req.PeriodMonth, req.PeriodYear, basis)
			if err != nil {
				return err
			}
			rec.GeneratedAt = generatedAt
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	saved := make([]payroll.PayrollRecordResponse, 0, len(records))
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, rec := range records {
			stored, err := s.payrollRepo.Upsert(ctx, rec)
			if err != nil {
				return fmt.Errorf("failed to save payroll record for officer %s: %w", rec.OfficerID, err)
			}
			saved = append(saved, payroll.ToRecordResponse(stored))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Payroll generated",
		"period_month", req.PeriodMonth,
		"period_year", req.PeriodYear,
		"divisor_basis", basis,
		"records", len(saved),
	)
	return saved, nil
}

func (s *PayrollServiceImpl) officersFor(ctx context.Context, ids []string) ([]officer.Officer, error) {
	if len(ids) == 0 {
		officers, err := s.officerRepo.ListActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list active officers: %w", err)
		}
		return officers, nil
	}

	officers := make([]officer.Officer, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			o, err := s.officerRepo.GetByID(gctx, id)
			if err != nil {
				if errors.Is(err, officer.ErrOfficerNotFound) {
					return fmt.Errorf("officer %s: %w", id, err)
				}
				return fmt.Errorf("failed to get officer by ID: %w", err)
			}
			officers[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return officers, nil
}

func (s *PayrollServiceImpl) buildRecord(ctx context.Context, o officer.Officer, month, year int, basis payroll.DivisorBasis) (payroll.StaffPayrollRecord, error) {
	from, to := attendance.MonthBounds(month, year)
	rows, err := s.attendanceRepo.ListByOfficerRange(ctx, o.ID, from, to)
	if err != nil {
		return payroll.StaffPayrollRecord{}, fmt.Errorf("failed to list attendance for officer %s: %w", o.ID, err)
	}
	summary := attendance.Summarize(o.ID, month, year, rows)

	divisor := summary.CalendarDays
	if basis == payroll.DivisorWorkingDays {
		divisor = summary.WorkingDays
	}
	present := summary.PresentDays
	if present > divisor {
		present = divisor
	}

	cfg := s.rates.For(o.Position)
	salary := cfg.MonthlySalary
	if o.MonthlySalary != nil {
		salary = *o.MonthlySalary
	}
	if !salary.IsPositive() {
		return payroll.StaffPayrollRecord{}, fmt.Errorf("officer %s: %w", o.ID, payroll.ErrOfficerHasNoSalary)
	}

	result, err := payroll.Calculate(payroll.CalculationInput{
		Config:        cfg,
		MonthlySalary: salary,
		PresentDays:   present,
		DivisorDays:   divisor,
		OvertimeHours: summary.OvertimeHours,
	})
	if err != nil {
		return payroll.StaffPayrollRecord{}, fmt.Errorf("officer %s: %w", o.ID, err)
	}

	return payroll.StaffPayrollRecord{
		OfficerID:       o.ID,
		OfficerName:     o.FullName,
		Position:        cfg.Position,
		PeriodMonth:     month,
		PeriodYear:      year,
		DivisorBasis:    basis,
		DivisorDays:     divisor,
		WorkingDays:     summary.WorkingDays,
		PresentDays:     present,
		AbsentDays:      summary.AbsentDays,
		LeaveDays:       summary.LeaveDays,
		OvertimeHours:   summary.OvertimeHours,
		MonthlySalary:   salary,
		Components:      result.Components,
		Deductions:      result.Deductions,
		GrossSalary:     result.GrossSalary,
		TotalDeductions: result.TotalDeductions,
		NetSalary:       result.NetSalary,
	}, nil
}

// Get implements payroll.PayrollService.
func (s *PayrollServiceImpl) Get(ctx context.Context, caller access.Principal, id string) (payroll.PayrollRecordResponse, error) {
	rec, err := s.payrollRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, payroll.ErrPayrollRecordNotFound) {
			return payroll.PayrollRecordResponse{}, err
		}
		return payroll.PayrollRecordResponse{}, fmt.Errorf("failed to get payroll record by ID: %w", err)
	}
	if rec.OfficerID != caller.ActorID() && !access.HasCapability(caller, access.FeaturePayrollView) {
		return payroll.PayrollRecordResponse{}, payroll.ErrUnauthorizedAccess
	}
	return payroll.ToRecordResponse(rec), nil
}

// List implements payroll.PayrollService. Without payroll.view the caller
// only sees their own records.
func (s *PayrollServiceImpl) List(ctx context.Context, caller access.Principal, filter payroll.PayrollFilter) (payroll.ListPayrollRecordResponse, error) {
	filter.Normalize()
	if !access.HasCapability(caller, access.FeaturePayrollView) {
		actor := caller.ActorID()
		filter.OfficerID = &actor
	}

	records, total, err := s.payrollRepo.List(ctx, filter)
	if err != nil {
		return payroll.ListPayrollRecordResponse{}, fmt.Errorf("failed to list payroll records: %w", err)
	}

	resp := payroll.ListPayrollRecordResponse{
		Records: make([]payroll.PayrollRecordResponse, 0, len(records)),
		Total:   total,
		Page:    filter.Page,
		Limit:   filter.Limit,
	}
	for _, r := range records {
		resp.Records = append(resp.Records, payroll.ToRecordResponse(r))
	}
	return resp, nil
}
