// Package middleware provides Gin HTTP middleware for request identification, logging,
// metrics, rate limiting, security headers, and session authentication.
//
// Ordering is enforced in router.go:
//
//	Recovery → RequestID → Metrics → Logger → CORS → Security → Session → RateLimit → Handler
//
// Session runs before rate limiting so authenticated callers are limited per user
// rather than per address.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/project-directory/directory/internal/auth"
	"github.com/project-directory/directory/internal/claims"
)

// UserIDKey is the gin.Context key holding the authenticated user id.
const UserIDKey = "user_id"

// TokenValidator validates bearer session tokens.
type TokenValidator interface {
	ValidateJWT(token string) (*auth.Claims, error)
}

// SessionMiddleware authenticates the caller when an Authorization header is present.
// Requests without the header pass through anonymously; a malformed or invalid
// token is rejected with 401. The user id is stored both in gin.Context under
// UserIDKey and in the request context for the claim verifier.
func SessionMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header must start with 'Bearer '",
			})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is empty",
			})
			return
		}

		sessionClaims, err := validator.ValidateJWT(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired session token",
			})
			return
		}

		c.Set(UserIDKey, sessionClaims.UserID)
		c.Request = c.Request.WithContext(claims.WithUserID(c.Request.Context(), sessionClaims.UserID))

		c.Next()
	}
}

// RequireSession rejects requests that SessionMiddleware did not authenticate.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := claims.UserIDFromContext(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			return
		}
		c.Next()
	}
}
