package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/timetable"
)

var chains = map[ApplicantType][]ApprovalStage{
	ApplicantInnovationOfficer: {StageManagerPending, StageAGMPending},
	ApplicantMetaStaff:         {StageCEOPending},
}

var stageApprover = map[ApprovalStage]ApproverRole{
	StageManagerPending: ApproverManager,
	StageAGMPending:     ApproverAGM,
	StageCEOPending:     ApproverCEO,
}

var stageRejection = map[ApprovalStage]RejectionStage{
	StageManagerPending: RejectedAtManager,
	StageAGMPending:     RejectedAtAGM,
	StageCEOPending:     RejectedAtCEO,
}

// FirstStage returns the stage a new application of the given type starts in.
func FirstStage(t ApplicantType) (ApprovalStage, error) {
	chain, ok := chains[t]
	if !ok {
		return "", ErrInvalidApplicantType
	}
	return chain[0], nil
}

// ValidStages lists every approval_stage value an applicant type may hold.
func ValidStages(t ApplicantType) []ApprovalStage {
	chain := chains[t]
	stages := make([]ApprovalStage, 0, len(chain)+2)
	stages = append(stages, chain...)
	return append(stages, StageApproved, StageRejected)
}

// RequiredRole returns the approver a pending stage waits for.
func (s ApprovalStage) RequiredRole() (ApproverRole, bool) {
	role, ok := stageApprover[s]
	return role, ok
}

func (s ApprovalStage) IsTerminal() bool {
	return s == StageApproved || s == StageRejected
}

// next returns the stage after s in the chain, or StageApproved after the last one.
func next(t ApplicantType, s ApprovalStage) (ApprovalStage, error) {
	chain := chains[t]
	for i, stage := range chain {
		if stage != s {
			continue
		}
		if i == len(chain)-1 {
			return StageApproved, nil
		}
		return chain[i+1], nil
	}
	return "", ErrInvalidStage
}

// ApprovalCompletes reports whether approving the current stage approves the
// application.
func (a *LeaveApplication) ApprovalCompletes() bool {
	if a.Status != StatusPending {
		return false
	}
	n, err := next(a.ApplicantType, a.ApprovalStage)
	return err == nil && n == StageApproved
}

func (a *LeaveApplication) checkPendingFor(role ApproverRole) error {
	if a.Status != StatusPending || a.ApprovalStage.IsTerminal() {
		return ErrLeaveAlreadyProcessed
	}
	required, ok := a.ApprovalStage.RequiredRole()
	if !ok {
		return ErrInvalidStage
	}
	if required != role {
		return ErrApproverRoleMismatch
	}
	return nil
}

// Approve records the approver's decision on the current stage and advances
// the application. Reaching the end of the chain approves it.
func (a *LeaveApplication) Approve(approverID string, role ApproverRole, comments *string, at time.Time) error {
	if err := a.checkPendingFor(role); err != nil {
		return err
	}

	nextStage, err := next(a.ApplicantType, a.ApprovalStage)
	if err != nil {
		return err
	}

	switch a.ApprovalStage {
	case StageManagerPending:
		a.ApprovedByManager = &approverID
		a.ManagerApprovedAt = &at
		a.ManagerComments = comments
	case StageAGMPending:
		a.ApprovedByAGM = &approverID
		a.AGMApprovedAt = &at
		a.AGMComments = comments
	case StageCEOPending:
		a.ReviewedBy = &approverID
		a.ReviewedAt = &at
		a.AdminComments = comments
	}

	a.ApprovalStage = nextStage
	if nextStage == StageApproved {
		a.Status = StatusApproved
	}
	a.UpdatedAt = at
	return nil
}

// Reject ends the chain at the current stage.
func (a *LeaveApplication) Reject(approverID string, role ApproverRole, reason string, at time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return ErrRejectionReasonRequired
	}
	if err := a.checkPendingFor(role); err != nil {
		return err
	}

	rejectionStage := stageRejection[a.ApprovalStage]
	if a.ApprovalStage == StageCEOPending {
		a.ReviewedBy = &approverID
		a.ReviewedAt = &at
	}

	a.Status = StatusRejected
	a.ApprovalStage = StageRejected
	a.RejectionStage = &rejectionStage
	a.RejectionReason = &reason
	a.RejectedBy = &approverID
	a.RejectedAt = &at
	a.UpdatedAt = at
	return nil
}

// CanCancel is true while no approver has acted on the application.
func (a *LeaveApplication) CanCancel() bool {
	if a.Status != StatusPending {
		return false
	}
	first, err := FirstStage(a.ApplicantType)
	if err != nil {
		return false
	}
	return a.ApprovalStage == first &&
		a.ApprovedByManager == nil &&
		a.ApprovedByAGM == nil &&
		a.ReviewedBy == nil
}

// Cancel withdraws the application. approval_stage keeps its first-stage
// marker; status carries the terminal value.
func (a *LeaveApplication) Cancel(officerID string, at time.Time) error {
	if a.OfficerID != officerID {
		return ErrNotApplicant
	}
	if !a.CanCancel() {
		return ErrCancelNotAllowed
	}

	a.Status = StatusCancelled
	a.CancelledBy = &officerID
	a.CancelledAt = &at
	a.UpdatedAt = at
	return nil
}

// FindSlot looks up an affected slot by id.
func (a *LeaveApplication) FindSlot(slotID string) (timetable.AffectedSlot, bool) {
	for _, s := range a.AffectedSlots {
		if s.SlotID == slotID {
			return s, true
		}
	}
	return timetable.AffectedSlot{}, false
}

// AcceptsSubstitutes reports whether substitutes can be assigned.
func (a *LeaveApplication) AcceptsSubstitutes() bool {
	return a.ApplicantType == ApplicantInnovationOfficer && a.Status == StatusApproved
}

// SetSubstitute stores the assignment, replacing any earlier one for the same slot.
func (a *LeaveApplication) SetSubstitute(sa timetable.SubstituteAssignment) error {
	if !a.AcceptsSubstitutes() {
		return ErrSubstituteNotAllowed
	}
	if _, ok := a.FindSlot(sa.SlotID); !ok {
		return ErrSlotNotFound
	}

	for i, existing := range a.SubstituteAssignments {
		if existing.SlotID == sa.SlotID {
			a.SubstituteAssignments[i] = sa
			a.UpdatedAt = sa.AssignedAt
			return nil
		}
	}
	a.SubstituteAssignments = append(a.SubstituteAssignments, sa)
	a.UpdatedAt = sa.AssignedAt
	return nil
}
