// File: giftmeet/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"giftmeet/config"
	"giftmeet/cron"
	"giftmeet/database"
	scheduleRepo "giftmeet/database/repository/schedule"
	"giftmeet/handlers"
	"giftmeet/middleware"
	"giftmeet/routes"
	"giftmeet/services/notification"
	"giftmeet/services/scheduler"
	"giftmeet/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Repositories.
	store := scheduleRepo.NewMongoScheduleStore()
	if mongoStore, ok := store.(*scheduleRepo.MongoScheduleStore); ok {
		if err := mongoStore.EnsureIndexes(context.Background()); err != nil {
			logger.Sugar().Fatalf("main: failed to ensure store indexes: %v", err)
		}
	}

	// Services.
	reminderQueue := cron.NewReminderQueueClient()
	notificationSvc := notification.NewDefaultNotificationService(
		reminderQueue,
		time.Duration(config.AppConfig.ReminderLeadMinutes)*time.Minute,
	)

	sessionStore := scheduler.NewRedisSessionStore(
		utils.GetSessionCacheClient(),
		time.Duration(config.AppConfig.SessionTTLMinutes)*time.Minute,
	)

	schedulerSvc := &scheduler.DefaultSchedulerService{
		Store:           store,
		Sessions:        sessionStore,
		Executor:        &scheduler.BookingExecutor{Store: store, Logger: logger},
		NotificationSvc: notificationSvc,
	}

	schedulerHandler := handlers.NewSchedulerHandler(schedulerSvc, logger)
	campaignHandler := handlers.NewCampaignHandler(store, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		OpenSession:    schedulerHandler.OpenSessionHandler,
		GetSession:     schedulerHandler.GetSessionHandler,
		SetHostFilter:  schedulerHandler.SetHostFilterHandler,
		SelectDate:     schedulerHandler.SelectDateHandler,
		SelectSlot:     schedulerHandler.SelectSlotHandler,
		NavigateMonth:  schedulerHandler.NavigateMonthHandler,
		ConfirmBooking: schedulerHandler.ConfirmBookingHandler,
		CloseSession:   schedulerHandler.CloseSessionHandler,

		UpsertCampaign:       campaignHandler.UpsertCampaignHandler,
		ReplaceCampaignHosts: campaignHandler.ReplaceCampaignHostsHandler,
		GetCampaignSchedule:  campaignHandler.GetCampaignScheduleHandler,
		GetHostSummary:       campaignHandler.GetHostSummaryHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background workers and monitors.
	cron.InitReminderWorker(store)
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetSessionCacheClient(), utils.GetAuthCacheClient()},
		database.MongoClient,
	)

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
