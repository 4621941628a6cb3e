package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carebook/utils"
)

// JWTAuthProviderMiddleware gates provider management endpoints. Session
// issuance lives in the identity system; here the token only has to verify
// and carry the provider id as its subject.
func JWTAuthProviderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		// Validate the token signature and expiration.
		token, err := utils.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		providerID, err := utils.SubjectFromToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token subject"})
			return
		}

		c.Set("providerID", providerID)
		c.Next()
	}
}
