package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/questhunt/quest-backend/internal/services"
	"github.com/questhunt/quest-backend/internal/utils"
)

// ctxKey is unexported to prevent collisions.
type ctxKey string

const (
	ContextKeyUserID       ctxKey = "userID"
	ContextKeySessionToken ctxKey = "sessionToken"
)

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

// AuthMiddleware rejects requests without a live session token.
func AuthMiddleware(sessions services.SessionService) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Missing bearer token", nil)
				return
			}
			userID, _, err := sessions.Validate(r.Context(), token)
			if err != nil {
				utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired session", nil)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeyUserID, userID.String())
			ctx = context.WithValue(ctx, ContextKeySessionToken, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware attaches the user to the context when a valid
// token is present, but lets anonymous requests through.
func OptionalAuthMiddleware(sessions services.SessionService) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token != "" {
				if userID, _, err := sessions.Validate(r.Context(), token); err == nil {
					ctx := context.WithValue(r.Context(), ContextKeyUserID, userID.String())
					ctx = context.WithValue(ctx, ContextKeySessionToken, token)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminKeyMiddleware gates admin endpoints on a static API key header.
func AdminKeyMiddleware(adminKey string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Admin-Key") != adminKey {
				utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeForbidden, "Admin key required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
