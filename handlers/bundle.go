package handlers

import (
	"nestly/middleware"
)

// HandlerBundle groups the endpoint handlers and the authenticators the
// routes need.
type HandlerBundle struct {
	Verifier  middleware.ActorVerifier
	AdminAuth middleware.AdminAuthenticator

	Auth        *AuthHandler
	Booking     *BookingHandler
	Provider    *ProviderHandler
	Application *ApplicationHandler
	Admin       *AdminHandler
}
