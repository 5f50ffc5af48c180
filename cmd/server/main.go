package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sikadvoltz/progression/internal/api"
	"sikadvoltz/progression/internal/config"
	"sikadvoltz/progression/internal/live"
	"sikadvoltz/progression/internal/presence"
	"sikadvoltz/progression/internal/push"
	mongorepo "sikadvoltz/progression/internal/repository/mongo"
	"sikadvoltz/progression/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.Println("Starting SikadVoltz progression server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongorepo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongorepo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	// The unique indexes are what make milestone/badge awarding
	// idempotent, so creation failures are worth surfacing in the logs.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongorepo.EnsureProgressionIndexes(ctx, appDB.Collection("progressions"))
		mongorepo.EnsureGoalIndexes(ctx, appDB.Collection("goals"))
		mongorepo.EnsureMilestoneIndexes(ctx, appDB.Collection("milestones"))
		mongorepo.EnsureBadgeIndexes(ctx, appDB.Collection("badges"))
		mongorepo.EnsureQuestIndexes(ctx, appDB.Collection("quests"))
		mongorepo.EnsureNotificationIndexes(ctx, appDB.Collection("notifications"))
		mongorepo.EnsureDeviceIndexes(ctx, appDB.Collection("devices"))
		log.Println("Index creation process completed.")
	}()

	// --- Presence (Redis) ---
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	tracker := presence.NewRedisTracker(redisClient, cfg.Redis.PresenceTTL)

	// --- Live channel ---
	hub := live.NewHub()

	// --- Repositories ---
	log.Println("Initializing repositories...")
	progressionRepo := mongorepo.NewMongoProgressionRepository(appDB)
	goalRepo := mongorepo.NewMongoGoalRepository(appDB)
	milestoneRepo := mongorepo.NewMongoMilestoneRepository(appDB)
	badgeRepo := mongorepo.NewMongoBadgeRepository(appDB)
	questRepo := mongorepo.NewMongoQuestRepository(appDB)
	notificationRepo := mongorepo.NewMongoNotificationRepository(appDB)
	deviceRepo := mongorepo.NewMongoDeviceRepository(appDB)

	// --- Push channel (SNS) ---
	var pushSender *push.SNSSender
	if cfg.SNS.FCMPlatformARN != "" || cfg.SNS.APNSPlatformARN != "" {
		pushSender, err = push.NewSNSSender(push.Config{
			Region:          cfg.SNS.Region,
			AccessKeyID:     cfg.SNS.AccessKeyID,
			SecretAccessKey: cfg.SNS.SecretAccessKey,
			FCMPlatformARN:  cfg.SNS.FCMPlatformARN,
			APNSPlatformARN: cfg.SNS.APNSPlatformARN,
		}, deviceRepo)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize SNS push sender: %v", err)
		}
	} else {
		log.Println("No SNS platform ARN configured; deferred pushes disabled.")
	}

	// --- Services ---
	log.Println("Initializing services...")
	var pushForRouter service.PushSender = push.NoopSender{}
	if pushSender != nil {
		pushForRouter = pushSender
	}

	notificationService := service.NewNotificationService(notificationRepo, tracker, hub, pushForRouter, nil, nil)
	goalService := service.NewGoalService(goalRepo, nil)
	progressionService := service.NewProgressionService(progressionRepo)
	streakService := service.NewStreakService(progressionRepo)
	milestoneService := service.NewMilestoneService(milestoneRepo, progressionRepo, nil)
	badgeService := service.NewBadgeService(badgeRepo, nil)
	questService := service.NewQuestService(questRepo, progressionRepo, nil)
	completionService := service.NewCompletionService(
		goalService,
		progressionService,
		streakService,
		milestoneService,
		badgeService,
		questService,
		notificationService,
		progressionRepo,
		milestoneRepo,
		badgeRepo,
		nil,
	)

	// --- Janitor ---
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go runJanitor(janitorCtx, cfg.Janitor, questService, notificationService)

	// --- Gin Engine & Routes ---
	router := gin.Default()
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, completionService, goalService, notificationService, pushSender, hub, tracker)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}

// runJanitor periodically expires overdue quests and prunes old read
// notifications.
func runJanitor(ctx context.Context, cfg config.JanitorConfig, quests service.QuestService, notifications service.NotificationService) {
	questTicker := time.NewTicker(cfg.QuestExpiryInterval)
	cleanupTicker := time.NewTicker(cfg.CleanupInterval)
	defer questTicker.Stop()
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-questTicker.C:
			runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if n, err := quests.ExpireOverdue(runCtx); err != nil {
				log.Printf("ERROR: quest expiry sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("Expired %d overdue quests.", n)
			}
			cancel()
		case <-cleanupTicker.C:
			runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if n, err := notifications.CleanupExpired(runCtx, cfg.NotificationAgeDays); err != nil {
				log.Printf("ERROR: notification cleanup failed: %v", err)
			} else if n > 0 {
				log.Printf("Deleted %d old read notifications.", n)
			}
			cancel()
		}
	}
}
