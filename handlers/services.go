package handlers

import (
	"net/http"

	"nestly/models"

	"github.com/gin-gonic/gin"
)

// GetServices handles GET /api/services.
func GetServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": models.ServiceCatalog})
}
