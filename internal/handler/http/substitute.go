package http

import (
	"net/http"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/timetable"
	"github.com/cmlabs-edu/eduops-backend/internal/handler/http/response"
)

type SubstituteHandler interface {
	Available(w http.ResponseWriter, r *http.Request)
}

type SubstituteHandlerImpl struct {
	substituteService timetable.SubstituteService
}

func NewSubstituteHandler(substituteService timetable.SubstituteService) SubstituteHandler {
	return &SubstituteHandlerImpl{substituteService: substituteService}
}

// Available implements SubstituteHandler.
func (h *SubstituteHandlerImpl) Available(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req := timetable.AvailableSubstitutesRequest{
		InstitutionID:    q.Get("institution_id"),
		Day:              q.Get("day"),
		PeriodID:         q.Get("period_id"),
		ExcludeOfficerID: q.Get("exclude_officer_id"),
	}
	if req.InstitutionID == "" && caller.InstitutionID != nil {
		req.InstitutionID = *caller.InstitutionID
	}
	if req.InstitutionID != "" && caller.InstitutionID != nil && !caller.InInstitution(req.InstitutionID) {
		response.Forbidden(w, "Cannot list substitutes of another institution")
		return
	}

	candidates, err := h.substituteService.AvailableSubstitutes(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, candidates)
}
