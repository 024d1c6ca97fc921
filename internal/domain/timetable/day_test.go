package timetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDay_SameCanonicalValue(t *testing.T) {
	for _, in := range []string{"Mon", "monday", "MONDAY", " mon ", "Mon."} {
		got, ok := NormalizeDay(in)
		require.True(t, ok, in)
		assert.Equal(t, Monday, got, in)
	}
}

func TestNormalizeDay_Abbreviations(t *testing.T) {
	cases := map[string]string{
		"tue": Tuesday, "Tues": Tuesday, "WED": Wednesday, "thu": Thursday,
		"Thur": Thursday, "thurs": Thursday, "fri": Friday, "Sat": Saturday, "sun": Sunday,
	}
	for in, want := range cases {
		got, ok := NormalizeDay(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
}

func TestNormalizeDay_Unknown(t *testing.T) {
	for _, in := range []string{"", "funday", "m"} {
		_, ok := NormalizeDay(in)
		assert.False(t, ok, in)
	}
}

func TestDatesBetween_Inclusive(t *testing.T) {
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)

	dates := DatesBetween(start, end)
	require.Len(t, dates, 7)
	assert.Equal(t, Monday, DayOf(dates[0]))
	assert.Equal(t, Sunday, DayOf(dates[6]))
}

func TestDatesBetween_ReversedRange(t *testing.T) {
	start := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, DatesBetween(start, end))
}

func TestAssignment_RoleOf(t *testing.T) {
	primary, secondary, backup := "o-1", "o-2", "o-3"
	a := Assignment{TeacherID: &primary, SecondaryTeacherID: &secondary, BackupTeacherID: &backup}

	role, ok := a.RoleOf("o-2")
	assert.True(t, ok)
	assert.Equal(t, TeacherRoleSecondary, role)

	_, ok = a.RoleOf("o-9")
	assert.False(t, ok)
	assert.Equal(t, []string{"o-1", "o-2", "o-3"}, a.TeacherIDs())
}
