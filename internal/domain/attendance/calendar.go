package attendance

import "time"

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthBounds returns the first and last date of the month.
func MonthBounds(month, year int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

func DaysInMonth(month, year int) int {
	_, last := MonthBounds(month, year)
	return last.Day()
}

// WorkingDaysInMonth counts Monday through Friday.
func WorkingDaysInMonth(month, year int) int {
	first, last := MonthBounds(month, year)
	n := 0
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}

// Summarize folds a month of rows into an OfficerAttendanceRecord. Rows
// outside the month are ignored.
func Summarize(officerID string, month, year int, rows []OfficerAttendance) OfficerAttendanceRecord {
	rec := OfficerAttendanceRecord{
		OfficerID:    officerID,
		PeriodMonth:  month,
		PeriodYear:   year,
		CalendarDays: DaysInMonth(month, year),
		WorkingDays:  WorkingDaysInMonth(month, year),
	}

	first, last := MonthBounds(month, year)
	for _, row := range rows {
		d := DateOf(row.Date)
		if d.Before(first) || d.After(last) {
			continue
		}
		switch row.Status {
		case StatusPresent:
			rec.PresentDays++
			rec.OvertimeHours = rec.OvertimeHours.Add(row.OvertimeHours)
		case StatusAbsent:
			rec.AbsentDays++
		case StatusLeave:
			rec.LeaveDays++
		}
	}
	return rec
}
