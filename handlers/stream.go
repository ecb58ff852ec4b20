package handlers

import (
	"context"
	"io"
	"time"

	"nestly/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const streamHeartbeat = 25 * time.Second

// StreamBookings handles GET /api/bookings/stream and /api/provider/bookings/stream.
// It emits a "bookings" server-sent event with the full result set on
// connect and after every change, until the client disconnects.
func (h *BookingHandler) StreamBookings(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	sub, err := h.Bookings.Subscribe(ctx, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	logger := getLogger(c).With(zap.String("actorId", actor.ID))
	updates := make(chan []models.Booking)
	failed := make(chan error, 1)
	done := make(chan struct{})
	// The reader owns sub: Next and Stop never run concurrently.
	go func() {
		defer close(done)
		defer close(updates)
		defer sub.Stop()
		for {
			bookings, err := sub.Next(ctx)
			if err != nil {
				if ctx.Err() == nil {
					failed <- err
				}
				return
			}
			select {
			case updates <- bookings:
			case <-ctx.Done():
				return
			}
		}
	}()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()
	defer func() {
		cancel()
		<-done
	}()

	c.Stream(func(w io.Writer) bool {
		select {
		case bookings, open := <-updates:
			if !open {
				return false
			}
			c.SSEvent("bookings", gin.H{"bookings": nonNil(bookings)})
			return true
		case err := <-failed:
			logger.Warn("Booking stream ended", zap.Error(err))
			c.SSEvent("error", gin.H{"message": "Stream interrupted, reconnect to resume"})
			return false
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case <-ctx.Done():
			return false
		}
	})
}
