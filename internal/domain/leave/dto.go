package leave

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/timetable"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/validator"
)

// MaxLeaveDays bounds a single application's range.
const MaxLeaveDays = 366

type SubmitLeaveRequest struct {
	OfficerID     string  `json:"officer_id"`
	OfficerName   string  `json:"officer_name"`
	ApplicantType string  `json:"applicant_type"`
	InstitutionID *string `json:"institution_id,omitempty"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	LeaveType     string  `json:"leave_type"`
	Reason        string  `json:"reason"`

	// parsed by Validate
	start time.Time
	end   time.Time
}

func (r *SubmitLeaveRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OfficerID) {
		errs.Add("officer_id", "officer_id is required")
	}
	if validator.IsEmpty(r.OfficerName) {
		errs.Add("officer_name", "officer_name is required")
	}

	applicantType := ApplicantType(r.ApplicantType)
	if !applicantType.IsValid() {
		errs.Add("applicant_type", "applicant_type must be one of: innovation_officer, meta_staff")
	}
	if applicantType == ApplicantInnovationOfficer && (r.InstitutionID == nil || validator.IsEmpty(*r.InstitutionID)) {
		errs.Add("institution_id", "institution_id is required for innovation officers")
	}

	if !LeaveType(r.LeaveType).IsValid() {
		errs.Add("leave_type", "leave_type must be one of: sick, casual, earned")
	}
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if startOK && endOK && end.Before(start) {
		errs.Add("end_date", "end_date must be on or after start_date")
	} else if startOK && endOK && end.Sub(start) > (MaxLeaveDays-1)*24*time.Hour {
		errs.Add("end_date", fmt.Sprintf("a leave application cannot span more than %d days", MaxLeaveDays))
	}

	r.start, r.end = start, end
	return errs.Err()
}

// Dates returns the parsed range. Only meaningful after a successful Validate.
func (r *SubmitLeaveRequest) Dates() (time.Time, time.Time) {
	return r.start, r.end
}

type ApproveLeaveRequest struct {
	Comments *string `json:"comments,omitempty"`
	Version  *int    `json:"version,omitempty"`
}

func (r *ApproveLeaveRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Comments != nil && len(*r.Comments) > 2000 {
		errs.Add("comments", "comments must not exceed 2000 characters")
	}
	if r.Version != nil && *r.Version < 1 {
		errs.Add("version", "version must be positive")
	}
	return errs.Err()
}

type RejectLeaveRequest struct {
	Reason  string `json:"reason"`
	Version *int   `json:"version,omitempty"`
}

func (r *RejectLeaveRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}
	if r.Version != nil && *r.Version < 1 {
		errs.Add("version", "version must be positive")
	}
	return errs.Err()
}

type AssignSubstituteRequest struct {
	SlotID              string `json:"slot_id"`
	SubstituteOfficerID string `json:"substitute_officer_id"`
	Version             *int   `json:"version,omitempty"`
}

func (r *AssignSubstituteRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.SlotID) {
		errs.Add("slot_id", "slot_id is required")
	}
	if validator.IsEmpty(r.SubstituteOfficerID) {
		errs.Add("substitute_officer_id", "substitute_officer_id is required")
	}
	if r.Version != nil && *r.Version < 1 {
		errs.Add("version", "version must be positive")
	}
	return errs.Err()
}

// LeaveApplicationFilter narrows List. Nil fields are ignored.
type LeaveApplicationFilter struct {
	OfficerID     *string
	InstitutionID *string
	Status        *Status
	ApprovalStage *ApprovalStage
	ApplicantType *ApplicantType
	Page          int
	Limit         int
}

func (f *LeaveApplicationFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

func (f LeaveApplicationFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

func (f *LeaveApplicationFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Status != nil {
		switch *f.Status {
		case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		default:
			errs.Add("status", "status must be one of: pending, approved, rejected, cancelled")
		}
	}
	if f.ApprovalStage != nil {
		valid := []string{
			string(StageManagerPending), string(StageAGMPending), string(StageCEOPending),
			string(StageApproved), string(StageRejected),
		}
		if !validator.IsInSlice(string(*f.ApprovalStage), valid) {
			errs.Add("approval_stage", "approval_stage must be one of: "+strings.Join(valid, ", "))
		}
	}
	if f.ApplicantType != nil && !f.ApplicantType.IsValid() {
		errs.Add("applicant_type", "applicant_type must be one of: innovation_officer, meta_staff")
	} else if f.ApplicantType != nil && f.ApprovalStage != nil && !slices.Contains(ValidStages(*f.ApplicantType), *f.ApprovalStage) {
		errs.Add("approval_stage", "approval_stage "+string(*f.ApprovalStage)+" never applies to "+string(*f.ApplicantType))
	}
	return errs.Err()
}

type LeaveApplicationResponse struct {
	ID            string  `json:"id"`
	OfficerID     string  `json:"officer_id"`
	OfficerName   string  `json:"officer_name"`
	ApplicantType string  `json:"applicant_type"`
	InstitutionID *string `json:"institution_id,omitempty"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	LeaveType     string  `json:"leave_type"`
	Reason        string  `json:"reason"`
	TotalDays     int     `json:"total_days"`
	Status        string  `json:"status"`
	ApprovalStage string  `json:"approval_stage"`
	AppliedAt     string  `json:"applied_at"`

	ApprovedByManager *string `json:"approved_by_manager,omitempty"`
	ManagerApprovedAt *string `json:"manager_approved_at,omitempty"`
	ManagerComments   *string `json:"manager_comments,omitempty"`
	ApprovedByAGM     *string `json:"approved_by_agm,omitempty"`
	AGMApprovedAt     *string `json:"agm_approved_at,omitempty"`
	AGMComments       *string `json:"agm_comments,omitempty"`

	ReviewedBy    *string `json:"reviewed_by,omitempty"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
	AdminComments *string `json:"admin_comments,omitempty"`

	RejectionReason *string `json:"rejection_reason,omitempty"`
	RejectedBy      *string `json:"rejected_by,omitempty"`
	RejectedAt      *string `json:"rejected_at,omitempty"`
	RejectionStage  *string `json:"rejection_stage,omitempty"`

	CancelledBy *string `json:"cancelled_by,omitempty"`
	CancelledAt *string `json:"cancelled_at,omitempty"`

	AffectedSlots         []timetable.AffectedSlot         `json:"affected_slots,omitempty"`
	SubstituteAssignments []timetable.SubstituteAssignment `json:"substitute_assignments,omitempty"`

	Version   int    `json:"version"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ListLeaveApplicationsResponse struct {
	Applications []LeaveApplicationResponse `json:"applications"`
	Total        int64                      `json:"total"`
	Page         int                        `json:"page"`
	Limit        int                        `json:"limit"`
}

// ComposeNoticeResponse carries a pre-filled mail compose link for a decision.
type ComposeNoticeResponse struct {
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	ComposeURL string `json:"compose_url"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// ToResponse maps the entity to its JSON shape.
func ToResponse(a LeaveApplication) LeaveApplicationResponse {
	resp := LeaveApplicationResponse{
		ID:                    a.ID,
		OfficerID:             a.OfficerID,
		OfficerName:           a.OfficerName,
		ApplicantType:         string(a.ApplicantType),
		InstitutionID:         a.InstitutionID,
		StartDate:             a.StartDate.Format(validator.DateLayout),
		EndDate:               a.EndDate.Format(validator.DateLayout),
		LeaveType:             string(a.LeaveType),
		Reason:                a.Reason,
		TotalDays:             a.TotalDays,
		Status:                string(a.Status),
		ApprovalStage:         string(a.ApprovalStage),
		AppliedAt:             a.AppliedAt.Format(time.RFC3339),
		ApprovedByManager:     a.ApprovedByManager,
		ManagerApprovedAt:     formatTime(a.ManagerApprovedAt),
		ManagerComments:       a.ManagerComments,
		ApprovedByAGM:         a.ApprovedByAGM,
		AGMApprovedAt:         formatTime(a.AGMApprovedAt),
		AGMComments:           a.AGMComments,
		ReviewedBy:            a.ReviewedBy,
		ReviewedAt:            formatTime(a.ReviewedAt),
		AdminComments:         a.AdminComments,
		RejectionReason:       a.RejectionReason,
		RejectedBy:            a.RejectedBy,
		RejectedAt:            formatTime(a.RejectedAt),
		CancelledBy:           a.CancelledBy,
		CancelledAt:           formatTime(a.CancelledAt),
		AffectedSlots:         a.AffectedSlots,
		SubstituteAssignments: a.SubstituteAssignments,
		Version:               a.Version,
		CreatedAt:             a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             a.UpdatedAt.Format(time.RFC3339),
	}
	if a.RejectionStage != nil {
		s := string(*a.RejectionStage)
		resp.RejectionStage = &s
	}
	return resp
}
