package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nestly/config"
	"nestly/cron"
	"nestly/database"
	"nestly/database/repository"
	"nestly/handlers"
	"nestly/middleware"
	"nestly/routes"
	"nestly/services/admin"
	"nestly/services/application"
	"nestly/services/booking"
	"nestly/services/identity"
	"nestly/services/notification"
	"nestly/services/provider"
	"nestly/services/rating"
	"nestly/services/storage"
	"nestly/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Stores.
	store, err := repository.NewStore(cfg.StoreBackend)
	if err != nil {
		logger.Fatal("main: failed to initialize store", zap.Error(err))
	}
	blobs, err := storage.NewBlobStore(cfg.BlobBackend)
	if err != nil {
		logger.Fatal("main: failed to initialize blob store", zap.Error(err))
	}

	cacheClient := utils.GetCacheClient()
	authCache := utils.GetAuthCacheClient()
	sessionClient := utils.GetSessionClient()

	// Notifications.
	queue := asynq.NewClient(utils.QueueRedisOpt())
	defer queue.Close()
	events := &notification.AsynqPublisher{Client: queue}

	dispatcher := &notification.Dispatcher{
		Bookings:  store.Bookings,
		Providers: store.Providers,
		Push:      &notification.FCMSender{Client: utils.GetFCMClient()},
		Logger:    logger.Named("notification"),
	}
	if sms := notification.NewTwilioSender(); sms != nil {
		dispatcher.SMS = sms
	} else {
		logger.Warn("Twilio is not configured, customer SMS notifications are disabled")
	}

	// Services.
	firebaseAuth := utils.GetFirebaseAuth()
	toolkit, err := identity.NewIdentityToolkit(context.Background(), cfg.FirebaseAPIKey)
	if err != nil {
		logger.Fatal("main: failed to initialize identity toolkit", zap.Error(err))
	}
	identityService := &identity.DefaultIdentityService{
		Admin:     firebaseAuth,
		REST:      toolkit,
		Google:    identity.NewGoogleOAuthConfig(),
		AuthCache: authCache,
		Logger:    logger.Named("identity"),
	}
	verifier := &identity.TokenVerifier{
		Auth:   firebaseAuth,
		Cache:  authCache,
		Logger: logger.Named("auth"),
	}

	matchingService := &booking.DefaultMatchingService{
		ProviderRepo: store.Providers,
		Cache: &booking.RedisDiscoveryCache{
			Client: cacheClient,
			TTL:    cfg.DiscoveryCacheTTL,
			Logger: logger,
		},
		Logger: logger.Named("discovery"),
	}
	bookingService := &booking.DefaultBookingService{
		BookingRepo: store.Bookings,
		MatchingSvc: matchingService,
		Events:      events,
		Logger:      logger.Named("booking"),
	}
	sessionService := &booking.DefaultBookingSessionService{
		Sessions:      &booking.RedisSessionStore{Client: sessionClient},
		MatchingSvc:   matchingService,
		Bookings:      bookingService,
		TTL:           cfg.SessionTTL,
		SubmitTimeout: cfg.SubmitTimeout,
		Logger:        logger.Named("booking"),
	}
	ratingService := &rating.DefaultRatingService{
		BookingRepo: store.Bookings,
		MatchingSvc: matchingService,
		Events:      events,
		Logger:      logger.Named("rating"),
	}
	providerService := &provider.DefaultProviderService{
		Repo:        store.Providers,
		MatchingSvc: matchingService,
		Logger:      logger.Named("provider"),
	}
	applicationService := &application.DefaultApplicationService{
		Repo:         store.Applications,
		ProviderRepo: store.Providers,
		Blobs:        blobs,
		Roles:        identityService,
		MatchingSvc:  matchingService,
		Logger:       logger.Named("application"),
	}
	adminService := &admin.DefaultAdminService{
		Email:        cfg.AdminEmail,
		PasswordHash: cfg.AdminPasswordHash,
		TokenTTL:     utils.AdminTokenTTL,
	}

	// Background work.
	auditor := &rating.Auditor{
		Providers: store.Providers,
		Bookings:  store.Bookings,
		Logger:    logger.Named("audit"),
	}
	worker, err := cron.NewWorker(utils.QueueRedisOpt(), dispatcher, auditor, cfg.RatingAuditSchedule, logger.Named("worker"))
	if err != nil {
		logger.Fatal("main: failed to configure worker", zap.Error(err))
	}
	if err := worker.Start(); err != nil {
		logger.Fatal("main: failed to start worker", zap.Error(err))
	}

	healthCtx, stopHealth := context.WithCancel(context.Background())
	defer stopHealth()
	utils.StartHealthMonitor(healthCtx, []*redis.Client{cacheClient, authCache, sessionClient}, store.Pinger)

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin, logger))

	handlerBundle := &handlers.HandlerBundle{
		Verifier:    verifier,
		AdminAuth:   adminService,
		Auth:        handlers.NewAuthHandler(identityService),
		Booking:     handlers.NewBookingHandler(sessionService, bookingService, ratingService, matchingService),
		Provider:    handlers.NewProviderHandler(providerService),
		Application: handlers.NewApplicationHandler(applicationService),
		Admin:       handlers.NewAdminHandler(adminService, applicationService),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	worker.Shutdown()
	if err := database.CloseDB(ctx); err != nil {
		logger.Sugar().Warnf("main: failed to close database: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
