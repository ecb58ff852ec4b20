package handlers

import (
	"net/http"

	"nestly/services/provider"

	"github.com/gin-gonic/gin"
)

// ProviderHandler serves provider profile endpoints.
type ProviderHandler struct {
	Service provider.ProviderService
}

func NewProviderHandler(svc provider.ProviderService) *ProviderHandler {
	return &ProviderHandler{Service: svc}
}

// GetProvider handles GET /api/providers/:id.
func (h *ProviderHandler) GetProvider(c *gin.Context) {
	profile, err := h.Service.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetOwnProfile handles GET /api/provider/profile.
func (h *ProviderHandler) GetOwnProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	profile, err := h.Service.GetOwnProfile(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile handles PATCH /api/provider/profile.
func (h *ProviderHandler) UpdateProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input provider.ProfileUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	profile, err := h.Service.UpdateProfile(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// SetAvailability handles PUT /api/provider/availability.
func (h *ProviderHandler) SetAvailability(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input provider.AvailabilityUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	profile, err := h.Service.SetAvailability(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// RegisterDeviceToken handles PUT /api/provider/device-token.
func (h *ProviderHandler) RegisterDeviceToken(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.Service.RegisterDeviceToken(c.Request.Context(), actor, input.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device token registered"})
}
