package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextUserIDKey holds the authenticated user id on the gin context.
const ContextUserIDKey = "userID"

var (
	errNoCredentials  = errors.New("authorization header required")
	errBadCredentials = errors.New("invalid authorization header format")
	errRejectedToken  = errors.New("invalid or expired token")
)

type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString string) (string, error)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// value. The scheme is case-insensitive; anything after the token is rejected.
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errNoCredentials
	}

	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" || strings.ContainsAny(token, " \t") {
		return "", errBadCredentials
	}
	return token, nil
}

// AuthMiddleware stores the user id of a valid bearer token under
// ContextUserIDKey and rejects the request with 401 otherwise.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err == nil {
			var userID string
			if userID, err = tokens.ValidateToken(c.Request.Context(), token); err == nil {
				c.Set(ContextUserIDKey, userID)
				c.Next()
				return
			}
			err = errRejectedToken
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	}
}

// GetUserID reports the authenticated user id; an empty id counts as absent.
func GetUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextUserIDKey)
	return userID, userID != ""
}
