package handlers

import (
	"context"
	"net/http"
	"strings"

	"nestly/models"
	"nestly/services/booking"
	"nestly/services/rating"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves discovery, the booking wizard and booking lifecycle endpoints.
type BookingHandler struct {
	Sessions booking.BookingSessionService
	Bookings booking.BookingService
	Ratings  rating.RatingService
	Matching booking.MatchingService
}

func NewBookingHandler(sessions booking.BookingSessionService, bookings booking.BookingService, ratings rating.RatingService, matching booking.MatchingService) *BookingHandler {
	return &BookingHandler{Sessions: sessions, Bookings: bookings, Ratings: ratings, Matching: matching}
}

// DiscoverProviders handles GET /api/providers?service=.
func (h *BookingHandler) DiscoverProviders(c *gin.Context) {
	service := c.Query("service")
	if service == "" {
		badRequest(c, "service query parameter is required")
		return
	}
	profiles, err := h.Matching.MatchProviders(c.Request.Context(), service)
	if err != nil {
		respondError(c, err)
		return
	}
	summaries := make([]models.ProviderSummary, 0, len(profiles))
	for i := range profiles {
		summaries = append(summaries, profiles[i].Summary())
	}
	c.JSON(http.StatusOK, gin.H{"providers": summaries})
}

// InitiateSession handles POST /api/booking/session.
func (h *BookingHandler) InitiateSession(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input struct {
		Service string `json:"service" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, err := h.Sessions.InitiateSession(c.Request.Context(), actor, input.Service)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// SelectProvider handles PUT /api/booking/session/:sessionID/provider.
func (h *BookingHandler) SelectProvider(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input struct {
		ProviderID string `json:"providerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, err := h.Sessions.SelectProvider(c.Request.Context(), actor, c.Param("sessionID"), input.ProviderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SetSchedule handles PUT /api/booking/session/:sessionID/schedule.
func (h *BookingHandler) SetSchedule(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input struct {
		Date string `json:"date" binding:"required"`
		Time string `json:"time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, err := h.Sessions.SetSchedule(c.Request.Context(), actor, c.Param("sessionID"), input.Date, input.Time)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// SetAddress handles PUT /api/booking/session/:sessionID/address.
func (h *BookingHandler) SetAddress(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input struct {
		Address string `json:"address" binding:"required"`
		Notes   string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, err := h.Sessions.SetAddress(c.Request.Context(), actor, c.Param("sessionID"), input.Address, input.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ConfirmBooking handles POST /api/booking/session/:sessionID/confirm.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	b, err := h.Sessions.ConfirmBooking(c.Request.Context(), actor, c.Param("sessionID"))
	if err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("Booking confirmed", zap.String("bookingId", b.ID))
	c.JSON(http.StatusCreated, b)
}

// CancelSession handles DELETE /api/booking/session/:sessionID.
func (h *BookingHandler) CancelSession(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if err := h.Sessions.CancelSession(c.Request.Context(), actor, c.Param("sessionID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListBookings handles GET /api/bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	bookings, err := h.Bookings.ListForCustomer(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": nonNil(bookings)})
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	b, err := h.Bookings.GetBooking(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// RateBooking handles POST /api/bookings/:id/rating.
func (h *BookingHandler) RateBooking(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var input struct {
		Rating *int `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "rating must be a whole number from 1 to 5")
		return
	}
	result, err := h.Ratings.RateBooking(c.Request.Context(), actor, c.Param("id"), *input.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListProviderBookings handles GET /api/provider/bookings?status=requested,accepted.
func (h *BookingHandler) ListProviderBookings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var statuses []models.BookingStatus
	for _, raw := range strings.Split(c.Query("status"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			statuses = append(statuses, models.BookingStatus(strings.ToLower(raw)))
		}
	}
	bookings, err := h.Bookings.ListForProvider(c.Request.Context(), actor, statuses...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": nonNil(bookings)})
}

// AcceptBooking handles POST /api/provider/bookings/:id/accept.
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	h.transition(c, h.Bookings.AcceptBooking)
}

// DeclineBooking handles POST /api/provider/bookings/:id/decline.
func (h *BookingHandler) DeclineBooking(c *gin.Context) {
	h.transition(c, h.Bookings.DeclineBooking)
}

// CompleteBooking handles POST /api/provider/bookings/:id/complete.
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	h.transition(c, h.Bookings.CompleteBooking)
}

type transitionFunc func(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error)

func (h *BookingHandler) transition(c *gin.Context, fn transitionFunc) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	b, err := fn(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func nonNil(bookings []models.Booking) []models.Booking {
	if bookings == nil {
		return []models.Booking{}
	}
	return bookings
}
