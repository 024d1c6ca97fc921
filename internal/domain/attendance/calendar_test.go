package attendance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkingDaysInMonth(t *testing.T) {
	tests := []struct {
		month, year int
		expected    int
	}{
		{3, 2025, 21}, // starts on a Saturday
		{2, 2025, 20},
		{2, 2024, 21}, // leap year
		{6, 2025, 21},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, WorkingDaysInMonth(tt.month, tt.year), "%d/%d", tt.month, tt.year)
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, DaysInMonth(2, 2024))
	assert.Equal(t, 31, DaysInMonth(12, 2025))
}

func TestSummarize(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }
	rows := []OfficerAttendance{
		{Date: day(3), Status: StatusPresent, OvertimeHours: decimal.RequireFromString("1.5")},
		{Date: day(4), Status: StatusPresent},
		{Date: day(5), Status: StatusAbsent},
		{Date: day(6), Status: StatusLeave},
		{Date: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), Status: StatusPresent},
	}

	rec := Summarize("o-1", 3, 2025, rows)

	assert.Equal(t, 31, rec.CalendarDays)
	assert.Equal(t, 21, rec.WorkingDays)
	assert.Equal(t, 2, rec.PresentDays)
	assert.Equal(t, 1, rec.AbsentDays)
	assert.Equal(t, 1, rec.LeaveDays)
	assert.True(t, decimal.RequireFromString("1.5").Equal(rec.OvertimeHours))
}

func TestCloseShift(t *testing.T) {
	in := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

	t.Run("overtime beyond standard day", func(t *testing.T) {
		a := OfficerAttendance{Status: StatusPresent, CheckInAt: &in}
		require.NoError(t, a.CloseShift(in.Add(9*time.Hour+30*time.Minute)))
		assert.True(t, decimal.RequireFromString("9.5").Equal(a.WorkedHours))
		assert.True(t, decimal.RequireFromString("1.5").Equal(a.OvertimeHours))
	})

	t.Run("short day has no overtime", func(t *testing.T) {
		a := OfficerAttendance{Status: StatusPresent, CheckInAt: &in}
		require.NoError(t, a.CloseShift(in.Add(4*time.Hour)))
		assert.True(t, a.OvertimeHours.IsZero())
	})

	t.Run("twice", func(t *testing.T) {
		a := OfficerAttendance{Status: StatusPresent, CheckInAt: &in}
		require.NoError(t, a.CloseShift(in.Add(time.Hour)))
		assert.ErrorIs(t, a.CloseShift(in.Add(2*time.Hour)), ErrAlreadyCheckedOut)
	})

	t.Run("without check in", func(t *testing.T) {
		a := OfficerAttendance{Status: StatusAbsent}
		assert.ErrorIs(t, a.CloseShift(in), ErrNotCheckedIn)
	})
}
