package models

// VerifyPasswordRequest represents the request body for verifying a link password
type VerifyPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}
