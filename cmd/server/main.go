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

	"detectorbot/relay/internal/api"
	"detectorbot/relay/internal/config"
	"detectorbot/relay/internal/repository/mongo"
	"detectorbot/relay/internal/service"
	"detectorbot/relay/internal/storage"
	"detectorbot/relay/internal/whatsapp"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Deepfake Detector Relay...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureDetectionIndexes(ctx, appDB.Collection("detection_history"))
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing object storage...")
	objectStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	detectionRepo := mongo.NewMongoDetectionRepository(appDB)
	userRepo := mongo.NewMongoUserRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.JWTExpiration)
	identityResolver := service.NewIdentityResolver(authService, cfg.Auth.AnonymousNamespace)
	ingestService := service.NewIngestService(objectStorage, detectionRepo)
	historyService := service.NewHistoryService(detectionRepo)

	waClient := whatsapp.NewClient(cfg.WhatsApp, nil)
	relayService, err := service.NewRelayService(waClient, ingestService, identityResolver, 0)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize relay service: %v", err)
	}

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware
	router.MaxMultipartMemory = cfg.Server.MaxUploadBytes

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(
		router,
		identityResolver,
		api.NewAuthHandler(authService),
		api.NewUploadHandler(ingestService, identityResolver),
		api.NewHistoryHandler(historyService),
		api.NewWebhookHandler(relayService, cfg.WhatsApp.VerifyToken),
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  60 * time.Second, // Media uploads can be large
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
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
