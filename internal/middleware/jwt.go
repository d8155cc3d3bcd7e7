package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"finance_tracker/internal/apperr" // Error taxonomy
	"finance_tracker/internal/auth"   // JWT utility functions

	"github.com/gin-gonic/gin" // Gin web framework
)

// userIDKey is the gin context key holding the authenticated principal
const userIDKey = "userID"

// JWTAuthMiddleware validates JWT tokens and extracts user information
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
		claims, err := auth.ParseJWT(tokenStr, secret)        // Parse the JWT token
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(userIDKey, claims.UserID) // Store userID in context
		c.Next()                        // Proceed to the next handler
	}
}

// CurrentUser returns the authenticated principal of the request
func CurrentUser(c *gin.Context) (uint, error) {
	v, exists := c.Get(userIDKey)
	if !exists {
		return 0, apperr.ErrUnauthenticated
	}
	userID, ok := v.(uint)
	if !ok || userID == 0 {
		return 0, apperr.ErrUnauthenticated
	}
	return userID, nil
}
