package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ShiftCloser is the attendance operation the jobs drive.
type ShiftCloser interface {
	CloseStaleShifts(ctx context.Context) (int, error)
}

type AttendanceJobs struct {
	shifts   ShiftCloser
	interval time.Duration
}

func NewAttendanceJobs(shifts ShiftCloser, interval time.Duration) *AttendanceJobs {
	if interval <= 0 {
		interval = time.Hour
	}
	return &AttendanceJobs{shifts: shifts, interval: interval}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("close_stale_shifts", j.interval, j.CloseStaleShifts)
}

// CloseStaleShifts closes shifts officers forgot to check out of on earlier days.
func (j *AttendanceJobs) CloseStaleShifts(ctx context.Context) error {
	closed, err := j.shifts.CloseStaleShifts(ctx)
	if err != nil {
		return fmt.Errorf("failed to close stale shifts: %w", err)
	}
	if closed == 0 {
		slog.Debug("Cron: No stale shifts found")
	}
	return nil
}
