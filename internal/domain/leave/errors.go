package leave

import "errors"

var (
	ErrLeaveApplicationNotFound = errors.New("leave application not found")
	ErrLeaveAlreadyProcessed    = errors.New("leave application already processed")
	ErrApproverRoleMismatch     = errors.New("approver role does not match the pending stage")
	ErrInvalidApplicantType     = errors.New("invalid applicant type")
	ErrInvalidStage             = errors.New("approval stage is not valid for this applicant type")
	ErrRejectionReasonRequired  = errors.New("rejection reason is required")
	ErrNotApplicant             = errors.New("only the applicant can cancel a leave application")
	ErrCancelNotAllowed         = errors.New("leave application can no longer be cancelled")
	ErrVersionConflict          = errors.New("leave application was modified by someone else")
	ErrSubstituteNotAllowed     = errors.New("substitutes can only be assigned on approved innovation officer leave")
	ErrSlotNotFound             = errors.New("affected slot not found")
	ErrSubstituteNotEligible    = errors.New("substitute is not an active officer of this institution")
	ErrUnauthorizedAccess       = errors.New("unauthorized to access this leave application")
	ErrSelfApproval             = errors.New("approvers cannot decide on their own leave application")
	ErrOfficerNotInInstitution  = errors.New("officer is not assigned to this institution")
	ErrNoDecision               = errors.New("leave application has no decision yet")
)
