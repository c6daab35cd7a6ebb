package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/questhunt/quest-backend/internal/dtos"
	"github.com/questhunt/quest-backend/internal/services"
	"github.com/questhunt/quest-backend/internal/utils"
)

type SubmissionController struct {
	submissions services.SubmissionService
}

func NewSubmissionController(submissions services.SubmissionService) *SubmissionController {
	return &SubmissionController{submissions: submissions}
}

var submissionValidate = validator.New()

func (c *SubmissionController) Submit(w http.ResponseWriter, r *http.Request) {
	userID := getUserIDFromContext(r)
	if userID == nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Sign in before submitting", nil)
		return
	}

	var req dtos.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err)
		return
	}
	if err := submissionValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid submission payload", nil, err)
		return
	}

	submission, err := c.submissions.Submit(r.Context(), *userID, req.GameNumber, req.Answer, req.CaptchaID, req.CaptchaAnswer)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrCaptchaMismatch):
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeCaptchaMismatch, "Captcha answer did not match", nil)
		case errors.Is(err, utils.ErrDuplicateSubmission):
			utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeDuplicateSubmission, "A pending submission already exists for this game", nil)
		default:
			utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to submit answer", nil, err)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.SubmitAnswerResponse{
		SubmissionID: submission.ID.String(),
		Status:       string(submission.Status),
	})
}

func (c *SubmissionController) Review(w http.ResponseWriter, r *http.Request) {
	var req dtos.ReviewSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err)
		return
	}
	if err := submissionValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid review payload", nil, err)
		return
	}

	submissionID, err := uuid.Parse(req.SubmissionID)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid submission id", nil, err)
		return
	}

	submission, err := c.submissions.Review(r.Context(), submissionID, "admin", req.Approve)
	if err != nil {
		if errors.Is(err, utils.ErrSubmissionReviewed) {
			utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeSubmissionReviewed, "Submission was already reviewed", nil)
			return
		}
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to review submission", nil, err)
		return
	}

	resp := dtos.ReviewSubmissionResponse{
		SubmissionID: submission.ID.String(),
		Status:       string(submission.Status),
	}
	if submission.ReviewedBy != nil {
		resp.ReviewedBy = *submission.ReviewedBy
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
