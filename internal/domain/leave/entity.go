package leave

import (
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/timetable"
)

type ApplicantType string

const (
	ApplicantInnovationOfficer ApplicantType = "innovation_officer"
	ApplicantMetaStaff         ApplicantType = "meta_staff"
)

func (t ApplicantType) IsValid() bool {
	return t == ApplicantInnovationOfficer || t == ApplicantMetaStaff
}

type LeaveType string

const (
	LeaveTypeSick   LeaveType = "sick"
	LeaveTypeCasual LeaveType = "casual"
	LeaveTypeEarned LeaveType = "earned"
)

func (t LeaveType) IsValid() bool {
	switch t {
	case LeaveTypeSick, LeaveTypeCasual, LeaveTypeEarned:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

type ApprovalStage string

const (
	StageManagerPending ApprovalStage = "manager_pending"
	StageAGMPending     ApprovalStage = "agm_pending"
	StageCEOPending     ApprovalStage = "ceo_pending"
	StageApproved       ApprovalStage = "approved"
	StageRejected       ApprovalStage = "rejected"
)

type RejectionStage string

const (
	RejectedAtManager RejectionStage = "manager"
	RejectedAtAGM     RejectionStage = "agm"
	RejectedAtCEO     RejectionStage = "ceo"
)

// ApproverRole is the actor a pending stage waits for.
type ApproverRole string

const (
	ApproverManager ApproverRole = "manager"
	ApproverAGM     ApproverRole = "agm"
	ApproverCEO     ApproverRole = "ceo"
)

// LeaveApplication entity
type LeaveApplication struct {
	ID            string
	OfficerID     string
	OfficerName   string
	ApplicantType ApplicantType
	InstitutionID *string

	StartDate time.Time
	EndDate   time.Time
	LeaveType LeaveType
	Reason    string
	TotalDays int

	Status        Status
	ApprovalStage ApprovalStage
	AppliedAt     time.Time

	// innovation_officer chain
	ApprovedByManager *string
	ManagerApprovedAt *time.Time
	ManagerComments   *string
	ApprovedByAGM     *string
	AGMApprovedAt     *time.Time
	AGMComments       *string

	// meta_staff chain
	ReviewedBy    *string
	ReviewedAt    *time.Time
	AdminComments *string

	RejectionReason *string
	RejectedBy      *string
	RejectedAt      *time.Time
	RejectionStage  *RejectionStage

	CancelledBy *string
	CancelledAt *time.Time

	AffectedSlots         []timetable.AffectedSlot
	SubstituteAssignments []timetable.SubstituteAssignment

	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CountDays returns the inclusive number of calendar days in the range.
func CountDays(start, end time.Time) int {
	return len(timetable.DatesBetween(start, end))
}
