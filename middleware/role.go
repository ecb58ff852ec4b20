package middleware

import (
	"net/http"

	"nestly/models"

	"github.com/gin-gonic/gin"
)

// RequireRole rejects callers whose role is not one of roles.
// It must run after FirebaseAuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "This action requires the " + string(roles[0]) + " role",
		})
	}
}
