package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/questhunt/quest-backend/internal/middleware"
)

// parse userID from context if a session token was presented
func getUserIDFromContext(r *http.Request) *uuid.UUID {
	userID, ok := r.Context().Value(middleware.ContextKeyUserID).(string)
	if !ok || userID == "" {
		return nil
	}
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return nil
	}
	return &parsed
}

func getSessionTokenFromContext(r *http.Request) *string {
	token, ok := r.Context().Value(middleware.ContextKeySessionToken).(string)
	if !ok || token == "" {
		return nil
	}
	return &token
}
