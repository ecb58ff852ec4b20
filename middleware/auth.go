package middleware

import (
	"context"
	"net/http"
	"strings"

	"nestly/models"

	"github.com/gin-gonic/gin"
)

// ActorKey is the gin context key of the authenticated models.Actor.
const ActorKey = "actor"

// ActorVerifier resolves a bearer ID token to the identity behind it.
type ActorVerifier interface {
	Verify(ctx context.Context, idToken string) (models.Actor, error)
}

// bearerToken returns the token of an "Authorization: Bearer" header.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// FirebaseAuthMiddleware requires a valid identity-provider ID token and
// stores the caller's actor in the context.
func FirebaseAuthMiddleware(verifier ActorVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		actor, err := verifier.Verify(c.Request.Context(), token)
		if err != nil || actor.ID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		c.Set(ActorKey, actor)
		c.Set("idToken", token)
		c.Next()
	}
}

// GetActor returns the actor stored by FirebaseAuthMiddleware.
func GetActor(c *gin.Context) (models.Actor, bool) {
	v, exists := c.Get(ActorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}
