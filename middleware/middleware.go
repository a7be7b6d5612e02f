package middleware

import (
	"context"
	"net/http"
	"strings"

	"task-manager/backend/logging"
	"task-manager/backend/models"
	"task-manager/backend/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const requesterKey contextKey = "requester"

// JWTAuthMiddleware validates the bearer token and stores the requester
// identity in the request context for downstream handlers.
func JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
			http.Error(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := utils.ValidateToken(tokenStr)
		if err != nil {
			logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token provided for request to %s %s: %v", r.Method, r.URL.Path, err)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_SUBJECT, Description: Token carries malformed user id for request to %s %s: %v", r.Method, r.URL.Path, err)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		requester := models.AuthUser{ID: userID, Role: claims.Role}
		ctx := context.WithValue(r.Context(), requesterKey, requester)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequesterFromContext returns the authenticated requester placed in the
// context by JWTAuthMiddleware.
func RequesterFromContext(ctx context.Context) (models.AuthUser, bool) {
	requester, ok := ctx.Value(requesterKey).(models.AuthUser)
	return requester, ok
}

// WithRequester returns a context carrying the given requester. Used by
// handler tests to bypass token validation.
func WithRequester(ctx context.Context, requester models.AuthUser) context.Context {
	return context.WithValue(ctx, requesterKey, requester)
}
