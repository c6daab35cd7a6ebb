package controllers

import (
	"encoding/base64"
	"net/http"

	"github.com/questhunt/quest-backend/internal/dtos"
	"github.com/questhunt/quest-backend/internal/services"
	"github.com/questhunt/quest-backend/internal/utils"
)

type CaptchaController struct {
	captcha services.CaptchaService
}

func NewCaptchaController(captcha services.CaptchaService) *CaptchaController {
	return &CaptchaController{captcha: captcha}
}

func (c *CaptchaController) Challenge(w http.ResponseWriter, r *http.Request) {
	challenge, err := c.captcha.Generate()
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to generate captcha", nil, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.CaptchaChallengeResponse{
		CaptchaID:   challenge.ID,
		ImageBase64: base64.StdEncoding.EncodeToString(challenge.ImagePNG),
		Width:       challenge.Width,
		Height:      challenge.Height,
	})
}
