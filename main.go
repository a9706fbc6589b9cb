// File: slotify/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotify/config"
	"slotify/cron"
	"slotify/database"
	bookinglogRepo "slotify/database/repository/bookinglog"
	"slotify/handlers"
	"slotify/middleware"
	"slotify/routes"
	"slotify/services/agent"
	"slotify/services/availability"
	"slotify/services/calendar"
	ai "slotify/services/intelligence"
	"slotify/services/speech"
	"slotify/services/tasks"
	"slotify/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	loc, err := time.LoadLocation(config.AppConfig.Timezone)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid timezone %q: %v", config.AppConfig.Timezone, err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	ctx := context.Background()

	// repositories.
	archiveRepo := bookinglogRepo.NewMongoBookingLogRepo()

	// services.
	geminiClient, err := ai.NewGeminiClient(ctx, config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize Gemini client: %v", err)
	}
	extractor := ai.NewExtractor(geminiClient, loc)

	busyCache := calendar.NewBusyCache(utils.GetCacheClient(),
		time.Duration(config.AppConfig.BusyCacheTTLSeconds)*time.Second)
	policy := availability.DefaultPolicy(config.AppConfig.SlotStepMinutes, config.AppConfig.MaxSlotOptions)
	calendarSvc, err := calendar.NewGoogleCalendarService(ctx,
		config.AppConfig.GoogleServiceAccountFile,
		config.AppConfig.CalendarID,
		loc, policy, busyCache,
		config.AppConfig.ReminderLeadMinutes)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize calendar service: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	defer asynqClient.Close()
	reminderScheduler := tasks.NewAsynqReminderScheduler(asynqClient,
		time.Duration(config.AppConfig.ReminderLeadMinutes)*time.Minute)

	agentSvc := agent.NewAgent(agent.AgentOptions{
		Extractor:          extractor,
		Calendar:           calendarSvc,
		Archive:            archiveRepo,
		Reminders:          reminderScheduler,
		MinDurationMinutes: config.AppConfig.MinDurationMinutes,
		MaxDurationMinutes: config.AppConfig.MaxDurationMinutes,
		SessionTTL:         time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute,
		Location:           loc,
	})
	defer agentSvc.Close()

	var transcriber speech.Transcriber
	if config.AppConfig.GoogleServiceAccountFile != "" {
		transcriber = &speech.GoogleTranscriber{CredentialsFile: config.AppConfig.GoogleServiceAccountFile}
	}
	var synthesizer speech.Synthesizer
	if config.AppConfig.ElevenLabsAPIKey != "" {
		synthesizer = &speech.ElevenLabsTTS{
			APIKey:  config.AppConfig.ElevenLabsAPIKey,
			VoiceID: config.AppConfig.ElevenLabsVoiceID,
		}
	}

	// Background reminder worker and dependency health checks.
	cron.InitReminderWorker()
	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		ChatHandler:           handlers.ChatHandler(agentSvc),
		VoiceChatHandler:      handlers.VoiceChatHandler(agentSvc, transcriber, synthesizer),
		ResetHandler:          handlers.ResetHandler(agentSvc),
		RecentBookingsHandler: handlers.RecentBookingsHandler(archiveRepo),
		HealthHandler:         handlers.HealthHandler(agentSvc),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
