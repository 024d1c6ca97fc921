package timetable

import "github.com/cmlabs-edu/eduops-backend/internal/pkg/validator"

type AvailableSubstitutesRequest struct {
	InstitutionID    string `json:"institution_id"`
	Day              string `json:"day"`
	PeriodID         string `json:"period_id"`
	ExcludeOfficerID string `json:"exclude_officer_id"`
}

func (r *AvailableSubstitutesRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.InstitutionID) {
		errs.Add("institution_id", "institution_id is required")
	}
	if _, ok := NormalizeDay(r.Day); !ok {
		errs.Add("day", "day must be a weekday name")
	}
	if validator.IsEmpty(r.PeriodID) {
		errs.Add("period_id", "period_id is required")
	}

	return errs.Err()
}
