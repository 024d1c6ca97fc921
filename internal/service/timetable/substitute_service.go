package timetable

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/officer"
	"github.com/cmlabs-edu/eduops-backend/internal/domain/timetable"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

type SubstituteServiceImpl struct {
	officerRepo    officer.OfficerRepository
	assignmentRepo timetable.AssignmentRepository
	periodRepo     timetable.PeriodRepository
}

func NewSubstituteService(
	officerRepo officer.OfficerRepository,
	assignmentRepo timetable.AssignmentRepository,
	periodRepo timetable.PeriodRepository,
) timetable.SubstituteService {
	return &SubstituteServiceImpl{
		officerRepo:    officerRepo,
		assignmentRepo: assignmentRepo,
		periodRepo:     periodRepo,
	}
}

// AffectedSlots lists every dated occurrence of the officer's assignments
// inside [start, end]. Periods are fetched separately; a failed or partial
// period lookup leaves the default label and empty times on the slot.
func (s *SubstituteServiceImpl) AffectedSlots(ctx context.Context, officerID, institutionID string, start, end time.Time) ([]timetable.AffectedSlot, error) {
	dates := timetable.DatesBetween(start, end)
	if len(dates) == 0 {
		return nil, timetable.ErrInvalidRange
	}

	var (
		assignments []timetable.Assignment
		periods     map[string]timetable.Period
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		assignments, err = s.assignmentRepo.ListByTeacher(gctx, institutionID, officerID)
		if err != nil {
			return fmt.Errorf("failed to list timetable assignments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		list, err := s.periodRepo.ListByInstitution(gctx, institutionID)
		if err != nil {
			slog.Warn("period lookup failed, using default labels",
				"institution_id", institutionID,
				"error", err,
			)
			return nil
		}
		periods = make(map[string]timetable.Period, len(list))
		for _, p := range list {
			periods[p.ID] = p
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slots := make([]timetable.AffectedSlot, 0)
	for _, date := range dates {
		weekday := timetable.DayOf(date)
		for _, a := range assignments {
			day, ok := timetable.NormalizeDay(a.Day)
			if !ok || day != weekday {
				continue
			}
			role, _ := a.RoleOf(officerID)

			slot := timetable.AffectedSlot{
				SlotID:       timetable.SlotKey(a.ID, date),
				AssignmentID: a.ID,
				Day:          day,
				Date:         date.Format(validator.DateLayout),
				PeriodID:     a.PeriodID,
				PeriodLabel:  timetable.DefaultPeriodLabel,
				ClassID:      a.ClassID,
				ClassName:    a.ClassName,
				Subject:      a.Subject,
				Room:         a.Room,
				TeacherRole:  role,
			}
			if p, ok := periods[a.PeriodID]; ok {
				if p.Label != "" {
					slot.PeriodLabel = p.Label
				}
				slot.StartTime = p.StartTime
				slot.EndTime = p.EndTime
			}
			slots = append(slots, slot)
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].StartTime < slots[j].StartTime
	})

	return slots, nil
}

// AvailableSubstitutes returns every active officer of the institution other
// than the excluded one. Officers teaching in the same day and period are
// flagged busy but still returned.
func (s *SubstituteServiceImpl) AvailableSubstitutes(ctx context.Context, req timetable.AvailableSubstitutesRequest) ([]timetable.AvailableSubstitute, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	day, _ := timetable.NormalizeDay(req.Day)

	var (
		officers    []officer.Officer
		assignments []timetable.Assignment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		officers, err = s.officerRepo.ListActiveByInstitution(gctx, req.InstitutionID)
		if err != nil {
			return fmt.Errorf("failed to list officers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assignments, err = s.assignmentRepo.ListByInstitutionPeriod(gctx, req.InstitutionID, req.PeriodID)
		if err != nil {
			return fmt.Errorf("failed to list period assignments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	busy := make(map[string]bool)
	for _, a := range assignments {
		if !timetable.SameDay(a.Day, day) {
			continue
		}
		for _, id := range a.TeacherIDs() {
			busy[id] = true
		}
	}

	candidates := make([]timetable.AvailableSubstitute, 0, len(officers))
	for _, o := range officers {
		if o.ID == req.ExcludeOfficerID {
			continue
		}
		c := timetable.AvailableSubstitute{
			OfficerID:   o.ID,
			OfficerName: o.FullName,
			DisplayName: o.FullName,
			Skills:      o.Skills,
			IsAvailable: !busy[o.ID],
		}
		if !c.IsAvailable {
			c.DisplayName += timetable.BusySuffix
		}
		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].IsAvailable != candidates[j].IsAvailable {
			return candidates[i].IsAvailable
		}
		return candidates[i].OfficerName < candidates[j].OfficerName
	})

	return candidates, nil
}
