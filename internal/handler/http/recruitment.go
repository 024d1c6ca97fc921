package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/recruitment"
	"github.com/cmlabs-edu/eduops-backend/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type RecruitmentHandler interface {
	CreateJobPosting(w http.ResponseWriter, r *http.Request)
	GetJobPosting(w http.ResponseWriter, r *http.Request)
}

type RecruitmentHandlerImpl struct {
	recruitmentService recruitment.RecruitmentService
}

func NewRecruitmentHandler(recruitmentService recruitment.RecruitmentService) RecruitmentHandler {
	return &RecruitmentHandlerImpl{recruitmentService: recruitmentService}
}

// CreateJobPosting implements RecruitmentHandler.
func (h *RecruitmentHandlerImpl) CreateJobPosting(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(w, r)
	if !ok {
		return
	}

	var req recruitment.CreateJobPostingRequest
	if err := decodeJSON(r, &req, false); err != nil {
		slog.Error("Create job posting decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	resp, err := h.recruitmentService.CreateJobPosting(r.Context(), caller, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Job posting created successfully", resp)
}

// GetJobPosting implements RecruitmentHandler.
func (h *RecruitmentHandlerImpl) GetJobPosting(w http.ResponseWriter, r *http.Request) {
	resp, err := h.recruitmentService.GetJobPosting(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, resp)
}
