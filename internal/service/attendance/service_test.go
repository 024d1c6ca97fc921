package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/attendance"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/officer"
	"github.com/cmlabs-edu/eduops-backend/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	officerID     = "0190a1b2-0000-7000-8000-000000000001"
	otherOfficer  = "0190a1b2-0000-7000-8000-000000000002"
	inactiveID    = "0190a1b2-0000-7000-8000-000000000003"
	institutionID = "0190a1b2-0000-7000-8000-0000000000aa"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func setup(t *testing.T) (*AttendanceServiceImpl, *clock) {
	t.Helper()
	officers := memory.NewOfficerRepository()
	for _, o := range []officer.Officer{
		{ID: officerID, FullName: "Asha", InstitutionIDs: []string{institutionID}},
		{ID: otherOfficer, FullName: "Bala", InstitutionIDs: []string{institutionID}},
		{ID: inactiveID, FullName: "Chitra", Status: officer.StatusInactive},
	} {
		_, err := officers.Create(context.Background(), o)
		require.NoError(t, err)
	}

	c := &clock{t: time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)}
	svc := NewAttendanceService(memory.NewAttendanceRepository(), officers).(*AttendanceServiceImpl)
	svc.now = c.now
	return svc, c
}

func callerFor(id string) access.Principal {
	inst := institutionID
	return access.Principal{UserID: "u-" + id, Role: access.RoleOfficer, OfficerID: &id, InstitutionID: &inst}
}

// ===== CHECK IN / CHECK OUT TESTS =====

func TestAttendanceService_CheckInCheckOut(t *testing.T) {
	svc, c := setup(t)
	ctx := context.Background()

	in, err := svc.CheckIn(ctx, callerFor(officerID), attendance.CheckInRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-03", in.Date)
	assert.Equal(t, string(attendance.StatusPresent), in.Status)
	assert.Equal(t, institutionID, *in.InstitutionID)

	c.t = c.t.Add(9 * time.Hour)
	out, err := svc.CheckOut(ctx, callerFor(officerID))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(9).Equal(out.WorkedHours))
	assert.True(t, decimal.NewFromInt(1).Equal(out.OvertimeHours))
	assert.NotNil(t, out.CheckOutAt)
}

func TestAttendanceService_CheckInTwice(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, callerFor(officerID), attendance.CheckInRequest{})
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, callerFor(officerID), attendance.CheckInRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestAttendanceService_CheckOutWithoutCheckIn(t *testing.T) {
	svc, _ := setup(t)
	_, err := svc.CheckOut(context.Background(), callerFor(officerID))
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestAttendanceService_CheckIn_Rejections(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, access.Principal{UserID: "u-1", Role: access.RoleManager}, attendance.CheckInRequest{})
	assert.ErrorIs(t, err, attendance.ErrUnauthorized)

	_, err = svc.CheckIn(ctx, callerFor(inactiveID), attendance.CheckInRequest{})
	assert.ErrorIs(t, err, officer.ErrOfficerInactive)
}

// ===== MARK TESTS =====

func TestAttendanceService_MarkAbsentClearsShift(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, callerFor(officerID), attendance.CheckInRequest{})
	require.NoError(t, err)

	marked, err := svc.Mark(ctx, attendance.MarkAttendanceRequest{OfficerID: officerID, Date: "2025-03-03", Status: "absent"})

	require.NoError(t, err)
	assert.Equal(t, string(attendance.StatusAbsent), marked.Status)
	assert.Nil(t, marked.CheckInAt)
	assert.True(t, marked.WorkedHours.IsZero())
}

func TestAttendanceService_MarkUnknownOfficer(t *testing.T) {
	svc, _ := setup(t)
	_, err := svc.Mark(context.Background(), attendance.MarkAttendanceRequest{
		OfficerID: "0190a1b2-0000-7000-8000-0000000000ff",
		Date:      "2025-03-03",
		Status:    "leave",
	})
	assert.ErrorIs(t, err, officer.ErrOfficerNotFound)
}

// ===== SUMMARY TESTS =====

func TestAttendanceService_MonthlySummary(t *testing.T) {
	svc, c := setup(t)
	ctx := context.Background()

	_, err := svc.CheckIn(ctx, callerFor(officerID), attendance.CheckInRequest{})
	require.NoError(t, err)
	c.t = c.t.Add(10 * time.Hour)
	_, err = svc.CheckOut(ctx, callerFor(officerID))
	require.NoError(t, err)

	for date, status := range map[string]string{"2025-03-04": "absent", "2025-03-05": "leave", "2025-03-06": "present"} {
		_, err := svc.Mark(ctx, attendance.MarkAttendanceRequest{OfficerID: officerID, Date: date, Status: status})
		require.NoError(t, err)
	}

	rec, err := svc.MonthlySummary(ctx, callerFor(officerID), attendance.SummaryQuery{OfficerID: officerID, PeriodMonth: 3, PeriodYear: 2025})

	require.NoError(t, err)
	assert.Equal(t, 21, rec.WorkingDays)
	assert.Equal(t, 31, rec.CalendarDays)
	assert.Equal(t, 2, rec.PresentDays)
	assert.Equal(t, 1, rec.AbsentDays)
	assert.Equal(t, 1, rec.LeaveDays)
	assert.True(t, decimal.NewFromInt(2).Equal(rec.OvertimeHours))
}

func TestAttendanceService_MonthlySummary_OtherOfficerDenied(t *testing.T) {
	svc, _ := setup(t)
	q := attendance.SummaryQuery{OfficerID: otherOfficer, PeriodMonth: 3, PeriodYear: 2025}

	_, err := svc.MonthlySummary(context.Background(), callerFor(officerID), q)
	assert.ErrorIs(t, err, attendance.ErrUnauthorized)

	_, err = svc.MonthlySummary(context.Background(), access.Principal{UserID: "u-m", Role: access.RoleManager}, q)
	assert.NoError(t, err)
}

// ===== STALE SHIFT TESTS =====

func TestAttendanceService_CloseStaleShifts(t *testing.T) {
	svc, c := setup(t)
	ctx := context.Background()

	// Asha checks in at 08:00, Bala late at 20:00; neither checks out.
	_, err := svc.CheckIn(ctx, callerFor(officerID), attendance.CheckInRequest{})
	require.NoError(t, err)
	c.t = time.Date(2025, 3, 3, 20, 0, 0, 0, time.UTC)
	_, err = svc.CheckIn(ctx, callerFor(otherOfficer), attendance.CheckInRequest{})
	require.NoError(t, err)

	// Same day: nothing is stale yet
	closed, err := svc.CloseStaleShifts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)

	c.t = time.Date(2025, 3, 4, 1, 0, 0, 0, time.UTC)
	closed, err = svc.CloseStaleShifts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, closed)

	day := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	asha, err := svc.attendanceRepo.GetByOfficerDate(ctx, officerID, day)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(8).Equal(asha.WorkedHours))
	assert.True(t, asha.OvertimeHours.IsZero())

	bala, err := svc.attendanceRepo.GetByOfficerDate(ctx, otherOfficer, day)
	require.NoError(t, err)
	require.NotNil(t, bala.CheckOutAt)
	assert.Equal(t, time.Date(2025, 3, 3, 23, 59, 0, 0, time.UTC), *bala.CheckOutAt)
	assert.True(t, decimal.RequireFromString("3.98").Equal(bala.WorkedHours))

	// Already closed rows are not picked up again
	closed, err = svc.CloseStaleShifts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)
}
