package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/leave"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/timetable"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const leaveApplicationColumns = `
	id, officer_id, officer_name, applicant_type, institution_id,
	start_date, end_date, leave_type, reason, total_days,
	status, approval_stage, applied_at,
	approved_by_manager, manager_approved_at, manager_comments,
	approved_by_agm, agm_approved_at, agm_comments,
	reviewed_by, reviewed_at, admin_comments,
	rejection_reason, rejected_by, rejected_at, rejection_stage,
	cancelled_by, cancelled_at,
	affected_slots, substitute_assignments,
	version, created_at, updated_at`

type leaveApplicationRepositoryImpl struct {
	db *database.DB
}

func NewLeaveApplicationRepository(db *database.DB) leave.LeaveApplicationRepository {
	return &leaveApplicationRepositoryImpl{db: db}
}

func scanLeaveApplication(row pgx.Row) (leave.LeaveApplication, error) {
	var (
		a         leave.LeaveApplication
		rejection *string
	)
	err := row.Scan(
		&a.ID, &a.OfficerID, &a.OfficerName, &a.ApplicantType, &a.InstitutionID,
		&a.StartDate, &a.EndDate, &a.LeaveType, &a.Reason, &a.TotalDays,
		&a.Status, &a.ApprovalStage, &a.AppliedAt,
		&a.ApprovedByManager, &a.ManagerApprovedAt, &a.ManagerComments,
		&a.ApprovedByAGM, &a.AGMApprovedAt, &a.AGMComments,
		&a.ReviewedBy, &a.ReviewedAt, &a.AdminComments,
		&a.RejectionReason, &a.RejectedBy, &a.RejectedAt, &rejection,
		&a.CancelledBy, &a.CancelledAt,
		&a.AffectedSlots, &a.SubstituteAssignments,
		&a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return leave.LeaveApplication{}, err
	}
	if rejection != nil {
		rs := leave.RejectionStage(*rejection)
		a.RejectionStage = &rs
	}
	return a, nil
}

func rejectionStageValue(rs *leave.RejectionStage) *string {
	if rs == nil {
		return nil
	}
	s := string(*rs)
	return &s
}

// jsonb columns are NOT NULL; never write a nil slice
func slotsOrEmpty(s []timetable.AffectedSlot) []timetable.AffectedSlot {
	if s == nil {
		return []timetable.AffectedSlot{}
	}
	return s
}

func assignmentsOrEmpty(s []timetable.SubstituteAssignment) []timetable.SubstituteAssignment {
	if s == nil {
		return []timetable.SubstituteAssignment{}
	}
	return s
}

func (r *leaveApplicationRepositoryImpl) Create(ctx context.Context, a leave.LeaveApplication) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_applications (
			officer_id, officer_name, applicant_type, institution_id,
			start_date, end_date, leave_type, reason, total_days,
			status, approval_stage, applied_at,
			affected_slots, substitute_assignments,
			version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8, $9,
			$10, $11, NOW(),
			$12, $13,
			1, NOW(), NOW()
		) RETURNING ` + leaveApplicationColumns

	created, err := scanLeaveApplication(q.QueryRow(ctx, query,
		a.OfficerID, a.OfficerName, a.ApplicantType, a.InstitutionID,
		a.StartDate, a.EndDate, a.LeaveType, a.Reason, a.TotalDays,
		a.Status, a.ApprovalStage,
		slotsOrEmpty(a.AffectedSlots), assignmentsOrEmpty(a.SubstituteAssignments),
	))
	if err != nil {
		return leave.LeaveApplication{}, fmt.Errorf("insert leave application: %w", err)
	}
	return created, nil
}

func (r *leaveApplicationRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveApplicationColumns + ` FROM leave_applications WHERE id = $1`
	a, err := scanLeaveApplication(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveApplication{}, leave.ErrLeaveApplicationNotFound
		}
		return leave.LeaveApplication{}, err
	}
	return a, nil
}

func (r *leaveApplicationRepositoryImpl) List(ctx context.Context, filter leave.LeaveApplicationFilter) ([]leave.LeaveApplication, int64, error) {
	q := GetQuerier(ctx, r.db)
	filter.Normalize()

	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.OfficerID != nil {
		add("officer_id = $%d", *filter.OfficerID)
	}
	if filter.InstitutionID != nil {
		add("institution_id = $%d", *filter.InstitutionID)
	}
	if filter.Status != nil {
		add("status = $%d", string(*filter.Status))
	}
	if filter.ApprovalStage != nil {
		add("approval_stage = $%d", string(*filter.ApprovalStage))
	}
	if filter.ApplicantType != nil {
		add("applicant_type = $%d", string(*filter.ApplicantType))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_applications`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leave applications: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM leave_applications%s ORDER BY applied_at DESC LIMIT %d OFFSET %d`,
		leaveApplicationColumns, where, filter.Limit, filter.Offset())
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var apps []leave.LeaveApplication
	for rows.Next() {
		a, err := scanLeaveApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, a)
	}
	return apps, total, rows.Err()
}

func (r *leaveApplicationRepositoryImpl) Update(ctx context.Context, a leave.LeaveApplication) (leave.LeaveApplication, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_applications SET
			status = $3, approval_stage = $4,
			approved_by_manager = $5, manager_approved_at = $6, manager_comments = $7,
			approved_by_agm = $8, agm_approved_at = $9, agm_comments = $10,
			reviewed_by = $11, reviewed_at = $12, admin_comments = $13,
			rejection_reason = $14, rejected_by = $15, rejected_at = $16, rejection_stage = $17,
			cancelled_by = $18, cancelled_at = $19,
			affected_slots = $20, substitute_assignments = $21,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING ` + leaveApplicationColumns

	updated, err := scanLeaveApplication(q.QueryRow(ctx, query,
		a.ID, a.Version,
		a.Status, a.ApprovalStage,
		a.ApprovedByManager, a.ManagerApprovedAt, a.ManagerComments,
		a.ApprovedByAGM, a.AGMApprovedAt, a.AGMComments,
		a.ReviewedBy, a.ReviewedAt, a.AdminComments,
		a.RejectionReason, a.RejectedBy, a.RejectedAt, rejectionStageValue(a.RejectionStage),
		a.CancelledBy, a.CancelledAt,
		slotsOrEmpty(a.AffectedSlots), assignmentsOrEmpty(a.SubstituteAssignments),
	))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return leave.LeaveApplication{}, fmt.Errorf("update leave application: %w", err)
	}

	// no row matched: either gone or someone else bumped the version
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM leave_applications WHERE id = $1)`, a.ID).Scan(&exists); err != nil {
		return leave.LeaveApplication{}, err
	}
	if !exists {
		return leave.LeaveApplication{}, leave.ErrLeaveApplicationNotFound
	}
	return leave.LeaveApplication{}, leave.ErrVersionConflict
}
