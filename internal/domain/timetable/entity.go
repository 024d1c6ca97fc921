package timetable

import (
	"time"
)

const DefaultPeriodLabel = "Period"

type TeacherRole string

const (
	TeacherRolePrimary   TeacherRole = "primary"
	TeacherRoleSecondary TeacherRole = "secondary"
	TeacherRoleBackup    TeacherRole = "backup"
)

// Period is one row of an institution's bell schedule.
type Period struct {
	ID            string
	InstitutionID string
	Label         string
	StartTime     string // HH:MM
	EndTime       string // HH:MM
	DisplayOrder  int
}

// Assignment is a recurring weekly teaching slot.
type Assignment struct {
	ID                 string
	InstitutionID      string
	ClassID            string
	ClassName          string
	Subject            string
	Room               *string
	Day                string
	PeriodID           string
	TeacherID          *string
	SecondaryTeacherID *string
	BackupTeacherID    *string
}

// RoleOf returns which teacher role the officer holds on the assignment.
func (a Assignment) RoleOf(officerID string) (TeacherRole, bool) {
	switch {
	case a.TeacherID != nil && *a.TeacherID == officerID:
		return TeacherRolePrimary, true
	case a.SecondaryTeacherID != nil && *a.SecondaryTeacherID == officerID:
		return TeacherRoleSecondary, true
	case a.BackupTeacherID != nil && *a.BackupTeacherID == officerID:
		return TeacherRoleBackup, true
	}
	return "", false
}

// TeacherIDs lists every officer named on the assignment.
func (a Assignment) TeacherIDs() []string {
	var ids []string
	for _, id := range []*string{a.TeacherID, a.SecondaryTeacherID, a.BackupTeacherID} {
		if id != nil && *id != "" {
			ids = append(ids, *id)
		}
	}
	return ids
}

// AffectedSlot is a concrete dated occurrence of an assignment that falls
// inside a leave window. Stored as JSON on the leave application.
type AffectedSlot struct {
	SlotID       string      `json:"slot_id"`
	AssignmentID string      `json:"assignment_id"`
	Day          string      `json:"day"`
	Date         string      `json:"date"`
	PeriodID     string      `json:"period_id"`
	PeriodLabel  string      `json:"period_label"`
	StartTime    string      `json:"start_time"`
	EndTime      string      `json:"end_time"`
	ClassID      string      `json:"class_id"`
	ClassName    string      `json:"class_name"`
	Subject      string      `json:"subject"`
	Room         *string     `json:"room,omitempty"`
	TeacherRole  TeacherRole `json:"teacher_role"`
}

// SlotKey identifies one dated occurrence of an assignment.
func SlotKey(assignmentID string, date time.Time) string {
	return assignmentID + ":" + date.Format("2006-01-02")
}

// SubstituteAssignment records who covers an affected slot.
type SubstituteAssignment struct {
	SlotID                string    `json:"slot_id"`
	AssignmentID          string    `json:"assignment_id"`
	Date                  string    `json:"date"`
	ClassID               string    `json:"class_id"`
	ClassName             string    `json:"class_name"`
	PeriodID              string    `json:"period_id"`
	PeriodLabel           string    `json:"period_label"`
	Subject               string    `json:"subject"`
	OriginalOfficerID     string    `json:"original_officer_id"`
	OriginalOfficerName   string    `json:"original_officer_name"`
	SubstituteOfficerID   string    `json:"substitute_officer_id"`
	SubstituteOfficerName string    `json:"substitute_officer_name"`
	SubstituteWasBusy     bool      `json:"substitute_was_busy"`
	AssignedBy            string    `json:"assigned_by"`
	AssignedAt            time.Time `json:"assigned_at"`
}

// AvailableSubstitute is a candidate to cover a slot. Busy candidates are
// still listed; availability is advisory only.
type AvailableSubstitute struct {
	OfficerID   string   `json:"officer_id"`
	OfficerName string   `json:"officer_name"`
	DisplayName string   `json:"display_name"`
	Skills      []string `json:"skills"`
	IsAvailable bool     `json:"is_available"`
}

const BusySuffix = " (Has class)"
