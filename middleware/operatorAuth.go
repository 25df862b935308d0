package middleware

import (
	"net/http"
	"strings"

	"asap/utils"

	"github.com/gin-gonic/gin"
)

// OperatorAuthMiddleware guards the operator console endpoints. It expects a
// bearer JWT with an operator role claim.
func OperatorAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		operatorID, err := utils.ValidateOperatorToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized operator access"})
			return
		}

		c.Set("operatorID", operatorID)
		c.Next()
	}
}
