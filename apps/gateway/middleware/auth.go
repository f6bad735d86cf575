package middleware

import (
	"context"
	"net/http"
	"strings"

	"bulut3d/apps/user"
	"bulut3d/pkg/response"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// Authenticator turns a bearer token into a session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (user.Session, error)
}

func bearer(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// Auth attaches the session when a valid token is present. Requests without
// a token pass through as guests; a bad token is rejected.
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		token, ok := bearer(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}
		sess, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// RequireUser rejects guests.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Session(c); !ok {
			response.Abort(c, http.StatusUnauthorized, "sign in required")
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects everyone but the configured admin account.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := Session(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "sign in required")
			return
		}
		if !sess.IsAdmin {
			response.Abort(c, http.StatusForbidden, "admin only")
			return
		}
		c.Next()
	}
}

// Session returns the authenticated session of the request, if any.
func Session(c *gin.Context) (user.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return user.Session{}, false
	}
	sess, ok := v.(user.Session)
	return sess, ok
}
