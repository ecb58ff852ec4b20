package routes

import (
	"time"

	"nestly/handlers"
	"nestly/middleware"
	"nestly/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers sign-up, sign-in and account endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/signup", hb.Auth.SignUp)
		api.POST("/signin", hb.Auth.SignIn)
		api.POST("/google", hb.Auth.SignInWithGoogle)
		api.GET("/google/url", hb.Auth.GoogleAuthURL)
		api.GET("/google/callback", hb.Auth.GoogleCallback)

		protected := api.Group("")
		protected.Use(middleware.FirebaseAuthMiddleware(hb.Verifier))
		protected.POST("/verification-email", hb.Auth.SendVerificationEmail)
		protected.GET("/me", hb.Auth.Me)
		protected.POST("/signout", hb.Auth.SignOut)
	}
}

// RegisterDiscoveryRoutes registers the public catalog and provider lookup endpoints.
func RegisterDiscoveryRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/services", handlers.GetServices)

	api := r.Group("/api/providers")
	{
		api.GET("", hb.Booking.DiscoverProviders)
		api.GET("/:id", hb.Provider.GetProvider)
	}
}

// RegisterBookingRoutes registers the booking wizard and customer booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	session := r.Group("/api/booking/session")
	{
		session.Use(middleware.FirebaseAuthMiddleware(hb.Verifier), middleware.RequireRole(models.RoleCustomer))
		session.POST("", hb.Booking.InitiateSession)
		session.PUT("/:sessionID/provider", hb.Booking.SelectProvider)
		session.PUT("/:sessionID/schedule", hb.Booking.SetSchedule)
		session.PUT("/:sessionID/address", hb.Booking.SetAddress)
		session.POST("/:sessionID/confirm", hb.Booking.ConfirmBooking)
		session.DELETE("/:sessionID", hb.Booking.CancelSession)
	}

	bookings := r.Group("/api/bookings")
	{
		bookings.Use(middleware.FirebaseAuthMiddleware(hb.Verifier))
		bookings.GET("", hb.Booking.ListBookings)
		bookings.GET("/stream", hb.Booking.StreamBookings)
		bookings.GET("/:id", hb.Booking.GetBooking)
		bookings.POST("/:id/rating", hb.Booking.RateBooking)
	}
}

// RegisterProviderRoutes registers the provider's own profile, inbox and onboarding endpoints.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/provider")
	{
		api.Use(middleware.FirebaseAuthMiddleware(hb.Verifier), middleware.RequireRole(models.RoleProvider))
		api.GET("/profile", hb.Provider.GetOwnProfile)
		api.PATCH("/profile", hb.Provider.UpdateProfile)
		api.PUT("/availability", hb.Provider.SetAvailability)
		api.PUT("/device-token", hb.Provider.RegisterDeviceToken)

		api.GET("/bookings", hb.Booking.ListProviderBookings)
		api.GET("/bookings/stream", hb.Booking.StreamBookings)
		api.POST("/bookings/:id/accept", hb.Booking.AcceptBooking)
		api.POST("/bookings/:id/decline", hb.Booking.DeclineBooking)
		api.POST("/bookings/:id/complete", hb.Booking.CompleteBooking)

		api.POST("/application", hb.Application.SubmitApplication)
		api.GET("/application", hb.Application.GetOwnApplication)
		api.POST("/application/documents", hb.Application.UploadDocument)
	}
}

// RegisterAdminRoutes registers the admin console endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/admin/login", hb.Admin.Login)

	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.JWTAuthAdminMiddleware(hb.AdminAuth))
		adminGroup.GET("/applications", hb.Admin.ListApplications)
		adminGroup.GET("/applications/:id", hb.Admin.GetApplication)
		adminGroup.POST("/applications/:id/review", hb.Admin.ReviewApplication)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:   []string{"Content-Length", "X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAuthRoutes(r, hb)
	RegisterDiscoveryRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterProviderRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
