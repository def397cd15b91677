// File: staynest/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staynest/config"
	"staynest/cron"
	"staynest/database"
	bookingRepo "staynest/database/repository/booking"
	hostRepo "staynest/database/repository/host"
	listingRepo "staynest/database/repository/listing"
	reviewRepo "staynest/database/repository/review"
	sagaRepo "staynest/database/repository/saga"
	"staynest/handlers"
	"staynest/middleware"
	"staynest/routes"
	"staynest/services/cancellation"
	"staynest/services/notification"
	"staynest/services/tasks"
	"staynest/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()

	proofStorage, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize proof storage: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.Default())

	// repositories.
	bookings := bookingRepo.NewMongoBookingRepo()
	listings := listingRepo.NewMongoListingRepo()
	hosts := hostRepo.NewMongoHostRepo()
	reviews := reviewRepo.NewMongoReviewRepo()
	sagas := sagaRepo.NewMongoSagaRepo()

	// async task queue shared by the orchestrator and the recovery sweep.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})
	defer asynqClient.Close()
	queue := &tasks.AsynqTaskQueue{Client: asynqClient}

	// services.
	ledger := &cancellation.DefaultAccountabilityLedger{
		HostRepo: hosts,
		SagaRepo: sagas,
	}
	calendar := &cancellation.DefaultCalendarBlockingStore{
		ListingRepo: listings,
		SagaRepo:    sagas,
		Cache:       cancellation.NewRedisBlockCache(utils.GetCacheClient()),
	}
	autoReviews := &cancellation.DefaultAutoReviewGenerator{
		ReviewRepo: reviews,
		SagaRepo:   sagas,
	}
	orchestrator := &cancellation.DefaultOrchestrator{
		BookingRepo: bookings,
		ListingRepo: listings,
		SagaRepo:    sagas,
		Ledger:      ledger,
		Calendar:    calendar,
		Reviews:     autoReviews,
		Queue:       queue,
		Logger:      logger,
	}
	notificationService := &notification.DefaultNotificationService{
		Users:  hosts,
		Logger: logger,
	}

	cron.InitCancellationWorker(orchestrator, notificationService, sagas, queue, logger)

	cancelHandler := handlers.NewCancellationHandler(orchestrator, calendar, proofStorage)
	routes.RegisterRoutes(router, cancelHandler)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("listen: %v", err)
		}
	}()
	logger.Info("staynest server started", zap.String("port", config.AppConfig.AppPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited")
}
