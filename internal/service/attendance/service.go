package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/attendance"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/officer"
	"github.com/shopspring/decimal"
)

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	officerRepo    officer.OfficerRepository
	now            func() time.Time
}

func NewAttendanceService(attendanceRepo attendance.AttendanceRepository, officerRepo officer.OfficerRepository) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		officerRepo:    officerRepo,
		now:            time.Now,
	}
}

// CheckIn implements attendance.AttendanceService. A day already marked
// absent or leave becomes present.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, caller access.Principal, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	officerID, err := s.activeOfficer(ctx, caller)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	nowUTC := s.now().UTC()
	row, err := s.attendanceRepo.GetByOfficerDate(ctx, officerID, nowUTC)
	if err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance for today: %w", err)
	}
	if err == nil && row.CheckInAt != nil {
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
	}

	institutionID := req.InstitutionID
	if institutionID == nil {
		institutionID = caller.InstitutionID
	}

	row.OfficerID = officerID
	row.InstitutionID = institutionID
	row.Date = attendance.DateOf(nowUTC)
	row.Status = attendance.StatusPresent
	row.CheckInAt = &nowUTC
	row.CheckOutAt = nil
	row.WorkedHours = decimal.Zero
	row.OvertimeHours = decimal.Zero

	saved, err := s.attendanceRepo.Upsert(ctx, row)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to save attendance: %w", err)
	}

	slog.Info("Officer checked in", "officer_id", officerID, "date", saved.Date.Format("2006-01-02"))
	return attendance.ToResponse(saved), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, caller access.Principal) (attendance.AttendanceResponse, error) {
	officerID, err := s.activeOfficer(ctx, caller)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	nowUTC := s.now().UTC()
	row, err := s.attendanceRepo.GetByOfficerDate(ctx, officerID, nowUTC)
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance for today: %w", err)
	}

	if err := row.CloseShift(nowUTC); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	saved, err := s.attendanceRepo.Upsert(ctx, row)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to save attendance: %w", err)
	}

	slog.Info("Officer checked out",
		"officer_id", officerID,
		"worked_hours", saved.WorkedHours.String(),
		"overtime_hours", saved.OvertimeHours.String(),
	)
	return attendance.ToResponse(saved), nil
}

// Mark records a status for a date without check-in times. Marking a day
// absent or leave clears any recorded shift.
func (s *AttendanceServiceImpl) Mark(ctx context.Context, req attendance.MarkAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if _, err := s.officerRepo.GetByID(ctx, req.OfficerID); err != nil {
		if errors.Is(err, officer.ErrOfficerNotFound) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get officer by ID: %w", err)
	}

	date := req.ParsedDate()
	row, err := s.attendanceRepo.GetByOfficerDate(ctx, req.OfficerID, date)
	if err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	row.OfficerID = req.OfficerID
	row.Date = date
	row.Status = attendance.Status(req.Status)
	if row.Status != attendance.StatusPresent {
		row.CheckInAt = nil
		row.CheckOutAt = nil
		row.WorkedHours = decimal.Zero
		row.OvertimeHours = decimal.Zero
	}

	saved, err := s.attendanceRepo.Upsert(ctx, row)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to save attendance: %w", err)
	}
	return attendance.ToResponse(saved), nil
}

// MonthlySummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MonthlySummary(ctx context.Context, caller access.Principal, q attendance.SummaryQuery) (attendance.OfficerAttendanceRecord, error) {
	if err := q.Validate(); err != nil {
		return attendance.OfficerAttendanceRecord{}, err
	}
	if q.OfficerID != caller.ActorID() && !access.HasCapability(caller, access.FeatureAttendanceViewAll) {
		return attendance.OfficerAttendanceRecord{}, attendance.ErrUnauthorized
	}

	from, to := attendance.MonthBounds(q.PeriodMonth, q.PeriodYear)
	rows, err := s.attendanceRepo.ListByOfficerRange(ctx, q.OfficerID, from, to)
	if err != nil {
		return attendance.OfficerAttendanceRecord{}, fmt.Errorf("failed to list attendance: %w", err)
	}
	return attendance.Summarize(q.OfficerID, q.PeriodMonth, q.PeriodYear, rows), nil
}

// CloseStaleShifts closes shifts still open from earlier days at one standard
// day after check-in, bounded by the end of the shift's date.
func (s *AttendanceServiceImpl) CloseStaleShifts(ctx context.Context) (int, error) {
	open, err := s.attendanceRepo.ListOpenBefore(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to list open shifts: %w", err)
	}

	closed := 0
	for _, row := range open {
		closeAt := row.CheckInAt.Add(attendance.StandardHoursPerDay * time.Hour)
		if endOfDay := row.Date.Add(24*time.Hour - time.Minute); closeAt.After(endOfDay) {
			closeAt = endOfDay
		}
		if closeAt.Before(*row.CheckInAt) {
			closeAt = *row.CheckInAt
		}

		if err := row.CloseShift(closeAt); err != nil {
			slog.Warn("Skipping stale shift", "officer_id", row.OfficerID, "date", row.Date.Format("2006-01-02"), "error", err)
			continue
		}
		if _, err := s.attendanceRepo.Upsert(ctx, row); err != nil {
			return closed, fmt.Errorf("failed to close shift for officer %s: %w", row.OfficerID, err)
		}
		closed++
	}

	if closed > 0 {
		slog.Info("Closed stale shifts", "count", closed)
	}
	return closed, nil
}

func (s *AttendanceServiceImpl) activeOfficer(ctx context.Context, caller access.Principal) (string, error) {
	if caller.OfficerID == nil || *caller.OfficerID == "" {
		return "", attendance.ErrUnauthorized
	}
	o, err := s.officerRepo.GetByID(ctx, *caller.OfficerID)
	if err != nil {
		if errors.Is(err, officer.ErrOfficerNotFound) {
			return "", err
		}
		return "", fmt.Errorf("failed to get officer by ID: %w", err)
	}
	if !o.IsActive() {
		return "", officer.ErrOfficerInactive
	}
	return o.ID, nil
}
