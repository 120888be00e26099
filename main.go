// File: practica/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"practica/config"
	"practica/cron"
	"practica/database"
	bookingRepo "practica/database/repository/booking"
	catalogRepo "practica/database/repository/catalog"
	"practica/handlers"
	"practica/middleware"
	"practica/routes"
	"practica/services/availability"
	"practica/services/expiration"
	"practica/services/payment"
	"practica/services/reservation"
	"practica/services/session"
	"practica/services/wizard"
	"practica/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitSessionCache()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-Session-Token"},
		MaxAge:          12 * time.Hour,
	}))

	// repositories.
	bookings := bookingRepo.NewMongoBookingRepo()
	if err := bookings.EnsureIndexes(); err != nil {
		logger.Sugar().Warnf("main: failed to ensure booking indexes: %v", err)
	}
	catalog := catalogRepo.NewMongoCatalogRepo()

	// services.
	taskClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer taskClient.Close()

	guard := &expiration.Guard{
		Hold:      config.BookingHold(),
		Bookings:  bookings,
		Scheduler: taskClient,
	}

	resolver := &availability.DefaultResolver{
		Bookings: bookings,
	}

	coordinator := &reservation.DefaultCoordinator{
		Catalog:  catalog,
		Bookings: bookings,
		Guard:    guard,
	}

	paymentBridge := &payment.StripeBridge{
		Bookings: bookings,
		Intents:  payment.StripeIntents{},
	}

	sessionStore := session.NewRedisStore(utils.GetSessionCacheClient(), config.SessionTTL())

	orchestrator := &wizard.DefaultOrchestrator{
		Sessions:     sessionStore,
		Catalog:      catalog,
		Availability: resolver,
		Reservations: coordinator,
		Payments:     paymentBridge,
	}

	bookingHandler := handlers.NewBookingHandler(orchestrator, logger)
	catalogHandler := handlers.NewCatalogHandler(catalog, resolver, logger)
	webhookHandler := handlers.NewPaymentWebhookHandler(orchestrator, logger)

	routes.RegisterRoutes(router, bookingHandler, catalogHandler, webhookHandler)

	// Background expiry worker and health monitor.
	cron.InitExpiryWorker(guard)
	utils.StartHealthMonitor(map[string]*redis.Client{
		"cache":   utils.GetCacheClient(),
		"session": utils.GetSessionCacheClient(),
	}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
