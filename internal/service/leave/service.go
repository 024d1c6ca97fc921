package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/leave"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/officer"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/timetable"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/database"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/email"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/sse"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/validator"
)

const EventLeaveApplicationUpdated = "leave_application.updated"

type LeaveServiceImpl struct {
	tx          database.Transactor
	leaveRepo   leave.LeaveApplicationRepository
	officerRepo officer.OfficerRepository
	substitutes timetable.SubstituteService
	hub         *sse.Hub
	now         func() time.Time
}

func NewLeaveService(
	tx database.Transactor,
	leaveRepo leave.LeaveApplicationRepository,
	officerRepo officer.OfficerRepository,
	substitutes timetable.SubstituteService,
	hub *sse.Hub,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:          tx,
		leaveRepo:   leaveRepo,
		officerRepo: officerRepo,
		substitutes: substitutes,
		hub:         hub,
		now:         time.Now,
	}
}

// Submit implements leave.LeaveService.
func (s *LeaveServiceImpl) Submit(ctx context.Context, caller access.Principal, req leave.SubmitLeaveRequest) (leave.LeaveApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	if req.OfficerID != caller.ActorID() && !access.HasCapability(caller, access.FeatureLeaveViewAll) {
		return leave.LeaveApplicationResponse{}, leave.ErrUnauthorizedAccess
	}

	applicantType := leave.ApplicantType(req.ApplicantType)
	if req.OfficerID == caller.ActorID() && !applicantMatchesRole(applicantType, caller.Role) {
		return leave.LeaveApplicationResponse{}, leave.ErrInvalidApplicantType
	}
	stage, err := leave.FirstStage(applicantType)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	if applicantType == leave.ApplicantInnovationOfficer {
		o, err := s.officerRepo.GetByID(ctx, req.OfficerID)
		if err != nil {
			if errors.Is(err, officer.ErrOfficerNotFound) {
				return leave.LeaveApplicationResponse{}, err
			}
			return leave.LeaveApplicationResponse{}, fmt.Errorf("failed to get officer: %w", err)
		}
		if !o.AssignedTo(*req.InstitutionID) {
			return leave.LeaveApplicationResponse{}, leave.ErrOfficerNotInInstitution
		}
	}

	start, end := req.Dates()
	app := leave.LeaveApplication{
		OfficerID:     req.OfficerID,
		OfficerName:   strings.TrimSpace(req.OfficerName),
		ApplicantType: applicantType,
		StartDate:     start,
		EndDate:       end,
		LeaveType:     leave.LeaveType(req.LeaveType),
		Reason:        strings.TrimSpace(req.Reason),
		TotalDays:     leave.CountDays(start, end),
		Status:        leave.StatusPending,
		ApprovalStage: stage,
	}
	if applicantType == leave.ApplicantInnovationOfficer {
		app.InstitutionID = req.InstitutionID
	}

	created, err := s.leaveRepo.Create(ctx, app)
	if err != nil {
		return leave.LeaveApplicationResponse{}, fmt.Errorf("failed to create leave application: %w", err)
	}

	slog.Info("Leave application submitted",
		"application_id", created.ID,
		"officer_id", created.OfficerID,
		"applicant_type", created.ApplicantType,
		"total_days", created.TotalDays,
	)
	s.publish(created)
	return leave.ToResponse(created), nil
}

// applicantMatchesRole keeps self-filed applications on the chain of the
// caller's own staff category.
func applicantMatchesRole(t leave.ApplicantType, role access.Role) bool {
	switch {
	case role.IsMetaStaff():
		return t == leave.ApplicantMetaStaff
	case role == access.RoleOfficer:
		return t == leave.ApplicantInnovationOfficer
	}
	return true
}

// Get implements leave.LeaveService.
func (s *LeaveServiceImpl) Get(ctx context.Context, caller access.Principal, id string) (leave.LeaveApplicationResponse, error) {
	app, err := s.getVisible(ctx, caller, id)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	return leave.ToResponse(app), nil
}

// List implements leave.LeaveService. Callers without leave.view_all only see
// their own applications; institution admins only see their institution.
func (s *LeaveServiceImpl) List(ctx context.Context, caller access.Principal, filter leave.LeaveApplicationFilter) (leave.ListLeaveApplicationsResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveApplicationsResponse{}, err
	}
	filter.Normalize()

	if !access.HasCapability(caller, access.FeatureLeaveViewAll) {
		actor := caller.ActorID()
		filter.OfficerID = &actor
	} else if caller.Role == access.RoleInstitutionAdmin {
		if caller.InstitutionID == nil {
			return leave.ListLeaveApplicationsResponse{}, leave.ErrUnauthorizedAccess
		}
		filter.InstitutionID = caller.InstitutionID
	}

	apps, total, err := s.leaveRepo.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveApplicationsResponse{}, fmt.Errorf("failed to list leave applications: %w", err)
	}

	resp := leave.ListLeaveApplicationsResponse{
		Applications: make([]leave.LeaveApplicationResponse, 0, len(apps)),
		Total:        total,
		Page:         filter.Page,
		Limit:        filter.Limit,
	}
	for _, a := range apps {
		resp.Applications = append(resp.Applications, leave.ToResponse(a))
	}
	return resp, nil
}

// Approve implements leave.LeaveService.
func (s *LeaveServiceImpl) Approve(ctx context.Context, caller access.Principal, id string, req leave.ApproveLeaveRequest) (leave.LeaveApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	role, ok := leave.ApproverRoleFor(caller.Role)
	if !ok {
		return leave.LeaveApplicationResponse{}, leave.ErrApproverRoleMismatch
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	// Slots are resolved before the transaction opens; pinning the version
	// keeps them tied to the state they were read from.
	var slots []timetable.AffectedSlot
	if current.ApplicantType == leave.ApplicantInnovationOfficer && current.ApprovalCompletes() {
		slots = s.resolveSlots(ctx, current)
	}

	updated, err := s.mutate(ctx, id, pinVersion(req.Version, current), func(_ context.Context, app *leave.LeaveApplication) error {
		if app.OfficerID == caller.ActorID() {
			return leave.ErrSelfApproval
		}
		if err := app.Approve(caller.ActorID(), role, req.Comments, s.now()); err != nil {
			return err
		}
		if app.Status == leave.StatusApproved && app.ApplicantType == leave.ApplicantInnovationOfficer {
			app.AffectedSlots = slots
		}
		return nil
	})
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	slog.Info("Leave application approved",
		"application_id", updated.ID,
		"approver_id", caller.ActorID(),
		"role", role,
		"approval_stage", updated.ApprovalStage,
	)
	return leave.ToResponse(updated), nil
}

// Reject implements leave.LeaveService.
func (s *LeaveServiceImpl) Reject(ctx context.Context, caller access.Principal, id string, req leave.RejectLeaveRequest) (leave.LeaveApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	role, ok := leave.ApproverRoleFor(caller.Role)
	if !ok {
		return leave.LeaveApplicationResponse{}, leave.ErrApproverRoleMismatch
	}

	updated, err := s.mutate(ctx, id, req.Version, func(_ context.Context, app *leave.LeaveApplication) error {
		if app.OfficerID == caller.ActorID() {
			return leave.ErrSelfApproval
		}
		return app.Reject(caller.ActorID(), role, strings.TrimSpace(req.Reason), s.now())
	})
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	slog.Info("Leave application rejected",
		"application_id", updated.ID,
		"approver_id", caller.ActorID(),
		"rejection_stage", *updated.RejectionStage,
	)
	return leave.ToResponse(updated), nil
}

// Cancel implements leave.LeaveService.
func (s *LeaveServiceImpl) Cancel(ctx context.Context, caller access.Principal, id string) (leave.LeaveApplicationResponse, error) {
	updated, err := s.mutate(ctx, id, nil, func(_ context.Context, app *leave.LeaveApplication) error {
		return app.Cancel(caller.ActorID(), s.now())
	})
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	return leave.ToResponse(updated), nil
}

// AffectedSlots returns the stored slots of an approved application, or the
// live resolution while it is still pending.
func (s *LeaveServiceImpl) AffectedSlots(ctx context.Context, caller access.Principal, id string) ([]timetable.AffectedSlot, error) {
	app, err := s.getVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if app.ApplicantType != leave.ApplicantInnovationOfficer || app.InstitutionID == nil {
		return []timetable.AffectedSlot{}, nil
	}
	if app.Status == leave.StatusApproved && len(app.AffectedSlots) > 0 {
		return app.AffectedSlots, nil
	}

	slots, err := s.substitutes.AffectedSlots(ctx, app.OfficerID, *app.InstitutionID, app.StartDate, app.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve affected slots: %w", err)
	}
	return slots, nil
}

// RefreshAffectedSlots recomputes and stores the slots of an innovation
// officer application.
func (s *LeaveServiceImpl) RefreshAffectedSlots(ctx context.Context, caller access.Principal, id string) (leave.LeaveApplicationResponse, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	if err := checkInstitutionScope(caller, current); err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	if current.ApplicantType != leave.ApplicantInnovationOfficer || current.InstitutionID == nil {
		return leave.LeaveApplicationResponse{}, leave.ErrSubstituteNotAllowed
	}

	slots, err := s.substitutes.AffectedSlots(ctx, current.OfficerID, *current.InstitutionID, current.StartDate, current.EndDate)
	if err != nil {
		return leave.LeaveApplicationResponse{}, fmt.Errorf("failed to resolve affected slots: %w", err)
	}

	updated, err := s.mutate(ctx, id, &current.Version, func(_ context.Context, app *leave.LeaveApplication) error {
		app.AffectedSlots = slots
		app.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	return leave.ToResponse(updated), nil
}

// AssignSubstitute records who covers one affected slot. Busy substitutes are
// accepted and flagged on the assignment.
func (s *LeaveServiceImpl) AssignSubstitute(ctx context.Context, caller access.Principal, id string, req leave.AssignSubstituteRequest) (leave.LeaveApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	if err := checkInstitutionScope(caller, current); err != nil {
		return leave.LeaveApplicationResponse{}, err
	}
	if !current.AcceptsSubstitutes() {
		return leave.LeaveApplicationResponse{}, leave.ErrSubstituteNotAllowed
	}
	slot, ok := current.FindSlot(req.SlotID)
	if !ok {
		return leave.LeaveApplicationResponse{}, leave.ErrSlotNotFound
	}

	candidates, err := s.substitutes.AvailableSubstitutes(ctx, timetable.AvailableSubstitutesRequest{
		InstitutionID:    *current.InstitutionID,
		Day:              slot.Day,
		PeriodID:         slot.PeriodID,
		ExcludeOfficerID: current.OfficerID,
	})
	if err != nil {
		return leave.LeaveApplicationResponse{}, fmt.Errorf("failed to list substitutes: %w", err)
	}

	var chosen *timetable.AvailableSubstitute
	for i := range candidates {
		if candidates[i].OfficerID == req.SubstituteOfficerID {
			chosen = &candidates[i]
			break
		}
	}
	if chosen == nil {
		return leave.LeaveApplicationResponse{}, leave.ErrSubstituteNotEligible
	}

	updated, err := s.mutate(ctx, id, pinVersion(req.Version, current), func(_ context.Context, app *leave.LeaveApplication) error {
		return app.SetSubstitute(timetable.SubstituteAssignment{
			SlotID:                slot.SlotID,
			AssignmentID:          slot.AssignmentID,
			Date:                  slot.Date,
			ClassID:               slot.ClassID,
			ClassName:             slot.ClassName,
			PeriodID:              slot.PeriodID,
			PeriodLabel:           slot.PeriodLabel,
			Subject:               slot.Subject,
			OriginalOfficerID:     app.OfficerID,
			OriginalOfficerName:   app.OfficerName,
			SubstituteOfficerID:   chosen.OfficerID,
			SubstituteOfficerName: chosen.OfficerName,
			SubstituteWasBusy:     !chosen.IsAvailable,
			AssignedBy:            caller.ActorID(),
			AssignedAt:            s.now(),
		})
	})
	if err != nil {
		return leave.LeaveApplicationResponse{}, err
	}

	slog.Info("Substitute assigned",
		"application_id", updated.ID,
		"slot_id", req.SlotID,
		"substitute_officer_id", req.SubstituteOfficerID,
	)
	return leave.ToResponse(updated), nil
}

// ComposeNotice builds a Gmail compose link announcing the decision on an
// application. When to is empty the applicant's officer email is used.
func (s *LeaveServiceImpl) ComposeNotice(ctx context.Context, caller access.Principal, id string, to string) (leave.ComposeNoticeResponse, error) {
	app, err := s.getVisible(ctx, caller, id)
	if err != nil {
		return leave.ComposeNoticeResponse{}, err
	}
	if app.Status == leave.StatusPending {
		return leave.ComposeNoticeResponse{}, leave.ErrNoDecision
	}

	to = strings.TrimSpace(to)
	if to == "" {
		if o, err := s.officerRepo.GetByID(ctx, app.OfficerID); err == nil && o.Email != nil {
			to = *o.Email
		}
	}
	if !validator.IsValidEmail(to) {
		var errs validator.ValidationErrors
		errs.Add("to", "a valid recipient email is required")
		return leave.ComposeNoticeResponse{}, errs.Err()
	}

	subject, body := noticeText(app)
	return leave.ComposeNoticeResponse{
		To:         to,
		Subject:    subject,
		Body:       body,
		ComposeURL: email.GmailComposeURL(to, subject, body),
	}, nil
}

func noticeText(app leave.LeaveApplication) (string, string) {
	period := fmt.Sprintf("%s to %s (%d day(s))",
		app.StartDate.Format(validator.DateLayout),
		app.EndDate.Format(validator.DateLayout),
		app.TotalDays,
	)
	subject := fmt.Sprintf("Leave application %s", app.Status)

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", app.OfficerName)
	fmt.Fprintf(&b, "Your %s leave for %s has been %s.\n", app.LeaveType, period, app.Status)
	if app.Status == leave.StatusRejected && app.RejectionReason != nil {
		fmt.Fprintf(&b, "Reason: %s\n", *app.RejectionReason)
	}
	if len(app.SubstituteAssignments) > 0 {
		b.WriteString("\nSubstitutes:\n")
		for _, sa := range app.SubstituteAssignments {
			fmt.Fprintf(&b, "- %s %s, %s: %s\n", sa.Date, sa.PeriodLabel, sa.ClassName, sa.SubstituteOfficerName)
		}
	}
	b.WriteString("\nRegards")
	return subject, b.String()
}

// mutate loads the application, applies change and writes it back with a
// version check, all in one transaction. The change event is published
// after commit. change runs on the transaction's connection and must not
// fan out concurrent repository calls.
func (s *LeaveServiceImpl) mutate(ctx context.Context, id string, expectedVersion *int, change func(context.Context, *leave.LeaveApplication) error) (leave.LeaveApplication, error) {
	var updated leave.LeaveApplication
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		app, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if expectedVersion != nil && *expectedVersion != app.Version {
			return leave.ErrVersionConflict
		}

		if err := change(ctx, &app); err != nil {
			return err
		}

		updated, err = s.leaveRepo.Update(ctx, app)
		if err != nil {
			if errors.Is(err, leave.ErrVersionConflict) || errors.Is(err, leave.ErrLeaveApplicationNotFound) {
				return err
			}
			return fmt.Errorf("failed to update leave application: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveApplication{}, err
	}

	s.publish(updated)
	return updated, nil
}

// resolveSlots never fails the approval; an empty result can be recomputed
// later through RefreshAffectedSlots.
func (s *LeaveServiceImpl) resolveSlots(ctx context.Context, app leave.LeaveApplication) []timetable.AffectedSlot {
	if app.InstitutionID == nil {
		return nil
	}
	slots, err := s.substitutes.AffectedSlots(ctx, app.OfficerID, *app.InstitutionID, app.StartDate, app.EndDate)
	if err != nil {
		slog.Error("Failed to resolve affected slots",
			"application_id", app.ID,
			"officer_id", app.OfficerID,
			"error", err,
		)
		return nil
	}
	return slots
}

func (s *LeaveServiceImpl) load(ctx context.Context, id string) (leave.LeaveApplication, error) {
	app, err := s.leaveRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, leave.ErrLeaveApplicationNotFound) {
			return leave.LeaveApplication{}, err
		}
		return leave.LeaveApplication{}, fmt.Errorf("failed to get leave application by ID: %w", err)
	}
	return app, nil
}

// pinVersion prefers the caller's expected version and falls back to the
// version of the state read before the transaction.
func pinVersion(expected *int, current leave.LeaveApplication) *int {
	if expected != nil {
		return expected
	}
	return &current.Version
}

func (s *LeaveServiceImpl) getVisible(ctx context.Context, caller access.Principal, id string) (leave.LeaveApplication, error) {
	app, err := s.load(ctx, id)
	if err != nil {
		return leave.LeaveApplication{}, err
	}

	if app.OfficerID == caller.ActorID() {
		return app, nil
	}
	if !access.HasCapability(caller, access.FeatureLeaveViewAll) {
		return leave.LeaveApplication{}, leave.ErrUnauthorizedAccess
	}
	if err := checkInstitutionScope(caller, app); err != nil {
		return leave.LeaveApplication{}, err
	}
	return app, nil
}

// checkInstitutionScope keeps institution admins inside their own institution.
func checkInstitutionScope(caller access.Principal, app leave.LeaveApplication) error {
	if caller.Role != access.RoleInstitutionAdmin {
		return nil
	}
	if app.InstitutionID == nil || !caller.InInstitution(*app.InstitutionID) {
		return leave.ErrUnauthorizedAccess
	}
	return nil
}

func (s *LeaveServiceImpl) publish(app leave.LeaveApplication) {
	if s.hub == nil {
		return
	}
	topics := []string{sse.AllTopic, sse.OfficerTopic(app.OfficerID)}
	if app.InstitutionID != nil {
		topics = append(topics, sse.InstitutionTopic(*app.InstitutionID))
	}
	s.hub.Publish(sse.Event{
		Event: EventLeaveApplicationUpdated,
		Data:  leave.ToResponse(app),
	}, topics...)
}
