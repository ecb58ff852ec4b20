package handlers

import (
	"net/http"

	"nestly/middleware"
	"nestly/models"
	"nestly/services/admin"
	"nestly/services/application"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the admin console: login and application review.
type AdminHandler struct {
	Admin        admin.AdminService
	Applications application.ApplicationService
}

func NewAdminHandler(adminSvc admin.AdminService, apps application.ApplicationService) *AdminHandler {
	return &AdminHandler{Admin: adminSvc, Applications: apps}
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, err := h.Admin.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		getLogger(c).Warn("Admin login rejected", zap.String("email", input.Email))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ListApplications handles GET /api/admin/applications?status=.
func (h *AdminHandler) ListApplications(c *gin.Context) {
	apps, err := h.Applications.ListApplications(c.Request.Context(), models.ApplicationStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	if apps == nil {
		apps = []models.ProviderApplication{}
	}
	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

// GetApplication handles GET /api/admin/applications/:id.
func (h *AdminHandler) GetApplication(c *gin.Context) {
	app, err := h.Applications.GetApplication(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

// ReviewApplication handles POST /api/admin/applications/:id/review.
func (h *AdminHandler) ReviewApplication(c *gin.Context) {
	var input struct {
		Decision models.ApplicationStatus `json:"decision" binding:"required"`
		Notes    string                   `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	reviewer := c.GetString(middleware.AdminKey)
	app, err := h.Applications.Review(c.Request.Context(), reviewer, c.Param("id"), input.Decision, input.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}
