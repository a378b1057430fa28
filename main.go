// File: clipbook/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clipbook/config"
	"clipbook/cron"
	"clipbook/database"
	recordsRepo "clipbook/database/repository/records"
	"clipbook/handlers"
	"clipbook/middleware"
	"clipbook/routes"
	"clipbook/services/calendar"
	"clipbook/services/conversation"
	ai "clipbook/services/intelligence"
	"clipbook/services/messenger"
	"clipbook/services/responder"
	"clipbook/services/scheduling"
	"clipbook/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitDedupCache()

	location, err := time.LoadLocation(config.AppConfig.TimeZone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid TIME_ZONE %q: %v", config.AppConfig.TimeZone, err)
	}

	blocks, err := scheduling.ParseBusinessHours(
		config.AppConfig.BusinessHoursStart,
		config.AppConfig.BusinessHoursEnd,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid business hours configuration: %v", err)
	}

	duration := time.Duration(config.AppConfig.AppointmentDuration) * time.Minute
	tolerance := time.Duration(config.AppConfig.SlotMatchTolerance) * time.Second

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Collaborators.
	calendarService := calendar.NewGoogleCalendarService()
	instagramService := messenger.NewDefaultInstagramService()
	aiService := ai.NewDefaultIntelligenceService(
		config.AppConfig.GeminiAPIKey,
		config.AppConfig.BarberName,
		location,
	)
	reminderScheduler := cron.NewAsynqReminderScheduler()
	bookingRecords := recordsRepo.NewMongoRecordRepo()

	// Core services.
	availabilityService := &scheduling.DefaultAvailabilityService{
		Calendar: calendarService,
		Blocks:   blocks,
		Duration: duration,
		Limit:    config.AppConfig.MaxSlotsShown,
		Location: location,
	}

	bookingCoordinator := &scheduling.DefaultBookingCoordinator{
		Availability: availabilityService,
		Calendar:     calendarService,
		Records:      bookingRecords,
		Reminders:    reminderScheduler,
		Duration:     duration,
		Tolerance:    tolerance,
	}

	responderService := &responder.DefaultResponder{
		BarberName: config.AppConfig.BarberName,
		HoursStart: config.AppConfig.BusinessHoursStart,
		HoursEnd:   config.AppConfig.BusinessHoursEnd,
		MaxListed:  3,
	}

	conversationStore := conversation.NewMemoryConversationStore(
		time.Duration(config.AppConfig.ConversationTTLMins) * time.Minute,
	)
	conversationStore.StartSweeper(time.Minute)

	engine := &conversation.DefaultConversationEngine{
		AI:            aiService,
		Availability:  availabilityService,
		Booking:       bookingCoordinator,
		Messenger:     instagramService,
		Responder:     responderService,
		Store:         conversationStore,
		Blocks:        blocks,
		LookaheadDays: config.AppConfig.LookaheadDays,
		HistoryLimit:  config.AppConfig.HistoryLimit,
		Tolerance:     tolerance,
		ServiceType:   "Haircut",
		Location:      location,
	}

	// Reminder delivery worker.
	cron.InitReminderWorker(instagramService, bookingRecords)

	// Webhook surface.
	webhookHandler := handlers.NewWebhookHandler(
		engine,
		instagramService,
		utils.GetDedupCacheClient(),
	)
	routes.RegisterRoutes(router, routes.NewHandlerBundle(webhookHandler))

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
