// File: carebook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carebook/config"
	"carebook/cron"
	"carebook/database"
	ruleRepoPkg "carebook/database/repository/rule"
	slotRepoPkg "carebook/database/repository/slot"
	"carebook/handlers"
	"carebook/middleware"
	"carebook/routes"
	"carebook/services/schedule"
	"carebook/services/tasks"
	"carebook/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	ruleRepo := ruleRepoPkg.NewMongoRuleRepo()
	slotRepo := slotRepoPkg.NewMongoSlotRepo()
	if err := ruleRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure rule indexes: %v", err)
	}
	if err := slotRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure slot indexes: %v", err)
	}

	// Event queue client for ledger-change events.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisEventQueueDB,
	})
	defer asynqClient.Close()

	// services.
	scheduleService := schedule.NewDefaultScheduleService(
		ruleRepo,
		slotRepo,
		utils.GetCacheClient(),
		tasks.NewAsynqEmitter(asynqClient),
	)

	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	bookingHandler := handlers.NewBookingHandler(scheduleService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		// Availability rule endpoints.
		GetRuleHandler: scheduleHandler.GetRuleHandler,
		SetRuleHandler: scheduleHandler.SetRuleHandler,

		// Slot query endpoints.
		GetMonthSlotsHandler: scheduleHandler.GetMonthSlotsHandler,
		GetDateSlotsHandler:  scheduleHandler.GetDateSlotsHandler,

		// Schedule edit endpoints.
		CustomSlotHandler:       scheduleHandler.CustomSlotHandler,
		CancelCustomSlotHandler: scheduleHandler.CancelCustomSlotHandler,
		SetLeaveHandler:         scheduleHandler.SetLeaveHandler,
		RemoveLeaveHandler:      scheduleHandler.RemoveLeaveHandler,

		// Booking endpoints.
		LockSlotHandler:    bookingHandler.LockSlotHandler,
		ReleaseSlotHandler: bookingHandler.ReleaseSlotHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Drain schedule events in the background.
	cron.InitScheduleEventWorker(cron.LogDispatcher{})

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
