package middleware

import (
	"net/http"
	"strings"

	"practica/utils"

	"github.com/gin-gonic/gin"
)

// SessionAuthMiddleware checks that the caller presents the resume token
// issued for the session it is addressing. Visitors are unauthenticated, so
// the token is the only thing binding a browser to its wizard state.
func SessionAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Session-Token")
		if token == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing session token"})
			return
		}

		sessionID, err := utils.ExtractSessionIDFromToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}
		if sessionID != c.Param("sessionID") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "session token does not match session"})
			return
		}

		c.Next()
	}
}
