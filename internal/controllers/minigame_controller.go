package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/questhunt/quest-backend/internal/dtos"
	"github.com/questhunt/quest-backend/internal/services"
	"github.com/questhunt/quest-backend/internal/utils"
)

type MinigameController struct {
	qrAccess services.QRAccessService
}

func NewMinigameController(qrAccess services.QRAccessService) *MinigameController {
	return &MinigameController{qrAccess: qrAccess}
}

var minigameValidate = validator.New()

// Access handles a QR scan: ?token=...&game=N. A missing or malformed
// game number is treated as game 0, which no token is bound to.
func (c *MinigameController) Access(w http.ResponseWriter, r *http.Request) {
	rawToken := r.URL.Query().Get("token")
	gameNumber, _ := strconv.Atoi(r.URL.Query().Get("game"))

	meta := utils.GetRequesterMeta(r)
	req := services.Requester{
		IP:           meta.IP,
		UserAgent:    meta.UserAgent,
		UserID:       getUserIDFromContext(r),
		SessionToken: getSessionTokenFromContext(r),
	}

	decision, err := c.qrAccess.ValidateAndConsume(r.Context(), rawToken, gameNumber, req)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to validate access token", nil, err)
		return
	}

	resp := dtos.AccessResponse{Granted: decision.Granted, GameNumber: decision.GameNumber}
	if decision.Granted {
		utils.RespondWithJSON(w, http.StatusOK, resp)
		return
	}
	if decision.Reason != nil {
		resp.Reason = string(*decision.Reason)
	}
	utils.RespondWithJSON(w, http.StatusForbidden, resp)
}

// GenerateTokens batch-creates tokens for printing. Admin only.
func (c *MinigameController) GenerateTokens(w http.ResponseWriter, r *http.Request) {
	var req dtos.GenerateTokensRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid payload", nil, err)
		return
	}
	if err := minigameValidate.Struct(req); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation, "Invalid token batch request", nil, err)
		return
	}

	tokens, err := c.qrAccess.GenerateBatch(r.Context(), req.GameNumber, req.Count, req.MaxAccessCount)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to generate tokens", nil, err)
		return
	}

	resp := dtos.GenerateTokensResponse{Tokens: make([]dtos.GeneratedToken, 0, len(tokens))}
	for _, t := range tokens {
		resp.Tokens = append(resp.Tokens, dtos.GeneratedToken{
			Token:          t.Token,
			GameNumber:     t.GameNumber,
			MaxAccessCount: t.MaxAccessCount,
		})
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}
