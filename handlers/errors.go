package handlers

import (
	"context"
	"errors"
	"net/http"

	"nestly/database"
	"nestly/middleware"
	"nestly/models"
	"nestly/services/admin"
	"nestly/services/application"
	"nestly/services/booking"
	"nestly/services/identity"
	"nestly/services/provider"
	"nestly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var codeStatus = map[string]int{
	"invalid_service":      http.StatusBadRequest,
	"invalid_rating":       http.StatusBadRequest,
	"invalid_request":      http.StatusBadRequest,
	"unauthenticated":      http.StatusUnauthorized,
	"permission_denied":    http.StatusForbidden,
	"not_found":            http.StatusNotFound,
	"invalid_state":        http.StatusConflict,
	"invalid_transition":   http.StatusConflict,
	"already_rated":        http.StatusConflict,
	"provider_unavailable": http.StatusConflict,
	"conflict":             http.StatusConflict,
	"busy":                 http.StatusConflict,
}

// classify extracts the taxonomy code and user-facing message of err.
func classify(err error) (code, message string, ok bool) {
	var bookingErr *booking.BookingError
	var providerErr *provider.ProviderError
	var appErr *application.ApplicationError
	var identityErr *identity.IdentityError
	switch {
	case errors.As(err, &bookingErr):
		return bookingErr.Code, bookingErr.Message, true
	case errors.As(err, &providerErr):
		return providerErr.Code, providerErr.Message, true
	case errors.As(err, &appErr):
		return appErr.Code, appErr.Message, true
	case errors.As(err, &identityErr):
		return identityErr.Code, identityErr.Message, true
	case errors.Is(err, admin.ErrInvalidCredentials):
		return "unauthenticated", "Invalid admin credentials", true
	case errors.Is(err, database.ErrConflict):
		return "conflict", "The record was changed concurrently, please retry", true
	case errors.Is(err, database.ErrNotFound):
		return "not_found", "Not found", true
	}
	return "", "", false
}

// respondError writes err as a JSON error with the status of its code.
func respondError(c *gin.Context, err error) {
	if code, message, ok := classify(err); ok {
		status, known := codeStatus[code]
		if !known {
			status = http.StatusBadRequest
		}
		utils.JSONError(c, status, code, message, "")
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		getLogger(c).Warn("Request timed out", zap.Error(err))
		utils.JSONError(c, http.StatusGatewayTimeout, "timeout",
			"The request timed out. It may still complete, check again shortly.", "")
		return
	}
	getLogger(c).Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "internal", "Internal Server Error", "")
}

func badRequest(c *gin.Context, details string) {
	utils.JSONError(c, http.StatusBadRequest, "invalid_request", "Invalid input", details)
}

// currentActor returns the authenticated actor, aborting with 401 when missing.
func currentActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "unauthenticated", "Insufficient authorization", "")
	}
	return actor, ok
}
