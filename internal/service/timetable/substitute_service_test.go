package timetable

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/officer"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/timetable"
	"github.com/cmlabs-edu/eduops-backend/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInstitution = "inst-1"

type failingPeriodRepo struct{}

func (failingPeriodRepo) Create(context.Context, timetable.Period) (timetable.Period, error) {
	return timetable.Period{}, errors.New("boom")
}

func (failingPeriodRepo) ListByInstitution(context.Context, string) ([]timetable.Period, error) {
	return nil, errors.New("connection reset")
}

type fixture struct {
	officers    *memory.OfficerRepository
	assignments *memory.AssignmentRepository
	periods     *memory.PeriodRepository
}

func newFixture() fixture {
	return fixture{
		officers:    memory.NewOfficerRepository(),
		assignments: memory.NewAssignmentRepository(),
		periods:     memory.NewPeriodRepository(),
	}
}

func (f fixture) service() timetable.SubstituteService {
	return NewSubstituteService(f.officers, f.assignments, f.periods)
}

func strPtr(s string) *string { return &s }

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

// ===== AFFECTED SLOTS TESTS =====

func TestAffectedSlots_WeekRangeMatchesAssignedDays(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	// Arrange
	_, err := f.periods.Create(ctx, timetable.Period{ID: "p1", InstitutionID: testInstitution, Label: "Period 1", StartTime: "09:00", EndTime: "09:45", DisplayOrder: 1})
	require.NoError(t, err)
	_, err = f.assignments.Create(ctx, timetable.Assignment{
		ID: "a-mon", InstitutionID: testInstitution, ClassID: "c1", ClassName: "Grade 6A",
		Subject: "Robotics", Day: "Mon", PeriodID: "p1", TeacherID: strPtr("o-1"),
	})
	require.NoError(t, err)
	_, err = f.assignments.Create(ctx, timetable.Assignment{
		ID: "a-wed", InstitutionID: testInstitution, ClassID: "c2", ClassName: "Grade 7B",
		Subject: "Coding", Day: "wednesday", PeriodID: "p1", BackupTeacherID: strPtr("o-1"),
	})
	require.NoError(t, err)

	// Act: Monday 2024-06-03 through Sunday 2024-06-09
	slots, err := f.service().AffectedSlots(ctx, "o-1", testInstitution, mustDate(t, "2024-06-03"), mustDate(t, "2024-06-09"))

	// Assert
	require.NoError(t, err)
	require.Len(t, slots, 2)

	assert.Equal(t, "2024-06-03", slots[0].Date)
	assert.Equal(t, timetable.Monday, slots[0].Day)
	assert.Equal(t, "Period 1", slots[0].PeriodLabel)
	assert.Equal(t, "09:00", slots[0].StartTime)
	assert.Equal(t, timetable.TeacherRolePrimary, slots[0].TeacherRole)
	assert.Equal(t, "a-mon:2024-06-03", slots[0].SlotID)

	assert.Equal(t, "2024-06-05", slots[1].Date)
	assert.Equal(t, timetable.TeacherRoleBackup, slots[1].TeacherRole)
}

func TestAffectedSlots_SortsByDateThenStartTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, _ = f.periods.Create(ctx, timetable.Period{ID: "late", InstitutionID: testInstitution, Label: "Period 4", StartTime: "13:00", DisplayOrder: 4})
	_, _ = f.periods.Create(ctx, timetable.Period{ID: "early", InstitutionID: testInstitution, Label: "Period 1", StartTime: "08:00", DisplayOrder: 1})
	_, _ = f.assignments.Create(ctx, timetable.Assignment{ID: "a1", InstitutionID: testInstitution, Day: "tue", PeriodID: "late", TeacherID: strPtr("o-1")})
	_, _ = f.assignments.Create(ctx, timetable.Assignment{ID: "a2", InstitutionID: testInstitution, Day: "TUESDAY", PeriodID: "early", SecondaryTeacherID: strPtr("o-1")})

	slots, err := f.service().AffectedSlots(ctx, "o-1", testInstitution, mustDate(t, "2024-06-04"), mustDate(t, "2024-06-04"))

	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "early", slots[0].PeriodID)
	assert.Equal(t, "late", slots[1].PeriodID)
}

func TestAffectedSlots_PeriodLookupFailureUsesDefaultLabel(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, _ = f.assignments.Create(ctx, timetable.Assignment{ID: "a1", InstitutionID: testInstitution, Day: "Mon", PeriodID: "p1", TeacherID: strPtr("o-1")})

	svc := NewSubstituteService(f.officers, f.assignments, failingPeriodRepo{})
	slots, err := svc.AffectedSlots(ctx, "o-1", testInstitution, mustDate(t, "2024-06-03"), mustDate(t, "2024-06-03"))

	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, timetable.DefaultPeriodLabel, slots[0].PeriodLabel)
	assert.Empty(t, slots[0].StartTime)
	assert.Empty(t, slots[0].EndTime)
}

func TestAffectedSlots_MissingPeriodUsesDefaultLabel(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, _ = f.assignments.Create(ctx, timetable.Assignment{ID: "a1", InstitutionID: testInstitution, Day: "Mon", PeriodID: "gone", TeacherID: strPtr("o-1")})

	slots, err := f.service().AffectedSlots(ctx, "o-1", testInstitution, mustDate(t, "2024-06-03"), mustDate(t, "2024-06-03"))

	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, timetable.DefaultPeriodLabel, slots[0].PeriodLabel)
}

func TestAffectedSlots_ReversedRange(t *testing.T) {
	f := newFixture()
	_, err := f.service().AffectedSlots(context.Background(), "o-1", testInstitution, mustDate(t, "2024-06-09"), mustDate(t, "2024-06-03"))
	assert.ErrorIs(t, err, timetable.ErrInvalidRange)
}

func TestAffectedSlots_NoAssignments(t *testing.T) {
	f := newFixture()
	slots, err := f.service().AffectedSlots(context.Background(), "o-1", testInstitution, mustDate(t, "2024-06-03"), mustDate(t, "2024-06-09"))
	require.NoError(t, err)
	assert.Empty(t, slots)
}

// ===== AVAILABLE SUBSTITUTES TESTS =====

func seedOfficers(t *testing.T, f fixture) {
	t.Helper()
	ctx := context.Background()
	for _, o := range []officer.Officer{
		{ID: "o-1", FullName: "Asha", InstitutionIDs: []string{testInstitution}},
		{ID: "o-2", FullName: "Bala", InstitutionIDs: []string{testInstitution}, Skills: []string{"robotics"}},
		{ID: "o-3", FullName: "Chitra", InstitutionIDs: []string{testInstitution}},
		{ID: "o-4", FullName: "Deepa", InstitutionIDs: []string{testInstitution}, Status: officer.StatusInactive},
		{ID: "o-5", FullName: "Esha", InstitutionIDs: []string{"inst-2"}},
	} {
		_, err := f.officers.Create(ctx, o)
		require.NoError(t, err)
	}
}

func TestAvailableSubstitutes_FlagsBusyOfficers(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedOfficers(t, f)

	// Bala teaches Monday period p1 as secondary teacher
	_, _ = f.assignments.Create(ctx, timetable.Assignment{ID: "a1", InstitutionID: testInstitution, Day: "monday", PeriodID: "p1", TeacherID: strPtr("o-1"), SecondaryTeacherID: strPtr("o-2")})
	// Chitra teaches period p1 on a different day
	_, _ = f.assignments.Create(ctx, timetable.Assignment{ID: "a2", InstitutionID: testInstitution, Day: "tue", PeriodID: "p1", TeacherID: strPtr("o-3")})

	got, err := f.service().AvailableSubstitutes(ctx, timetable.AvailableSubstitutesRequest{
		InstitutionID:    testInstitution,
		Day:              "Mon",
		PeriodID:         "p1",
		ExcludeOfficerID: "o-1",
	})

	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "o-3", got[0].OfficerID)
	assert.True(t, got[0].IsAvailable)
	assert.Equal(t, "Chitra", got[0].DisplayName)

	assert.Equal(t, "o-2", got[1].OfficerID)
	assert.False(t, got[1].IsAvailable)
	assert.Equal(t, "Bala (Has class)", got[1].DisplayName)
	assert.Equal(t, []string{"robotics"}, got[1].Skills)
}

func TestAvailableSubstitutes_InvalidDay(t *testing.T) {
	f := newFixture()
	_, err := f.service().AvailableSubstitutes(context.Background(), timetable.AvailableSubstitutesRequest{
		InstitutionID: testInstitution,
		Day:           "someday",
		PeriodID:      "p1",
	})
	assert.Error(t, err)
}
