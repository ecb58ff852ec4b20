package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminKey is the gin context key of the authenticated admin's email.
const AdminKey = "adminEmail"

// AdminAuthenticator validates admin console tokens.
type AdminAuthenticator interface {
	Authenticate(token string) (string, error)
}

func JWTAuthAdminMiddleware(auth AdminAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		email, err := auth.Authenticate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized admin access"})
			return
		}
		c.Set(AdminKey, email)
		c.Set("isAdmin", true)
		c.Next()
	}
}
