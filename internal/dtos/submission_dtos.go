package dtos

type SubmitAnswerRequest struct {
	GameNumber    int    `json:"game_number" validate:"required,min=1"`
	Answer        string `json:"answer" validate:"required,max=500"`
	CaptchaID     string `json:"captcha_id" validate:"required"`
	CaptchaAnswer string `json:"captcha_answer" validate:"required"`
}
type SubmitAnswerResponse struct {
	SubmissionID string `json:"submission_id"`
	Status       string `json:"status"`
}

type ReviewSubmissionRequest struct {
	SubmissionID string `json:"submission_id" validate:"required,uuid"`
	Approve      bool   `json:"approve"`
}
type ReviewSubmissionResponse struct {
	SubmissionID string `json:"submission_id"`
	Status       string `json:"status"`
	ReviewedBy   string `json:"reviewed_by"`
}
