package handlers

import (
	"net/http"

	"nestly/utils"

	"github.com/gin-gonic/gin"
)

// Health handles GET /health with the latest background health snapshot.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	healthy := status.CheckedAt.IsZero() || status.Store
	for _, ok := range status.Redis {
		healthy = healthy && ok
	}
	code := http.StatusOK
	state := "ok"
	if !healthy {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "checks": status})
}
