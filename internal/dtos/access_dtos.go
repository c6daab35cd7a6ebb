package dtos

// AccessResponse mirrors the structured decision of a QR scan.
type AccessResponse struct {
	Granted    bool   `json:"granted"`
	GameNumber int    `json:"game_number"`
	Reason     string `json:"reason,omitempty"`
}

// ----------------------
// Admin token generation
// ----------------------

type GenerateTokensRequest struct {
	GameNumber     int `json:"game_number" validate:"required,min=1"`
	Count          int `json:"count" validate:"required,min=1,max=1000"`
	MaxAccessCount int `json:"max_access_count" validate:"min=0"`
}

type GeneratedToken struct {
	Token          string `json:"token"`
	GameNumber     int    `json:"game_number"`
	MaxAccessCount int    `json:"max_access_count"`
}

type GenerateTokensResponse struct {
	Tokens []GeneratedToken `json:"tokens"`
}
