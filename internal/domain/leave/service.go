package leave

import (
	"context"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/timetable"
)

type LeaveService interface {
	Submit(ctx context.Context, caller access.Principal, req SubmitLeaveRequest) (LeaveApplicationResponse, error)
	Get(ctx context.Context, caller access.Principal, id string) (LeaveApplicationResponse, error)
	List(ctx context.Context, caller access.Principal, filter LeaveApplicationFilter) (ListLeaveApplicationsResponse, error)

	Approve(ctx context.Context, caller access.Principal, id string, req ApproveLeaveRequest) (LeaveApplicationResponse, error)
	Reject(ctx context.Context, caller access.Principal, id string, req RejectLeaveRequest) (LeaveApplicationResponse, error)
	Cancel(ctx context.Context, caller access.Principal, id string) (LeaveApplicationResponse, error)

	AffectedSlots(ctx context.Context, caller access.Principal, id string) ([]timetable.AffectedSlot, error)
	RefreshAffectedSlots(ctx context.Context, caller access.Principal, id string) (LeaveApplicationResponse, error)
	AssignSubstitute(ctx context.Context, caller access.Principal, id string, req AssignSubstituteRequest) (LeaveApplicationResponse, error)
	ComposeNotice(ctx context.Context, caller access.Principal, id string, to string) (ComposeNoticeResponse, error)
}

// ApproverRoleFor maps an account role to the approval chain role it may act as.
func ApproverRoleFor(role access.Role) (ApproverRole, bool) {
	switch role {
	case access.RoleManager:
		return ApproverManager, true
	case access.RoleAGM:
		return ApproverAGM, true
	case access.RoleCEO:
		return ApproverCEO, true
	}
	return "", false
}
