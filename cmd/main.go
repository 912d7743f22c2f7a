package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Kirkidoo/Qualipieces/internal/clients/gemini"
	"github.com/Kirkidoo/Qualipieces/internal/config"
	"github.com/Kirkidoo/Qualipieces/internal/database"
	"github.com/Kirkidoo/Qualipieces/internal/encryption"
	"github.com/Kirkidoo/Qualipieces/internal/handlers"
	"github.com/Kirkidoo/Qualipieces/internal/logging"
	"github.com/Kirkidoo/Qualipieces/internal/middleware"
	"github.com/Kirkidoo/Qualipieces/internal/models"
	"github.com/Kirkidoo/Qualipieces/internal/repository"
	"github.com/Kirkidoo/Qualipieces/internal/secrets"
	"github.com/Kirkidoo/Qualipieces/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, cfg.SQLitePath, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate models
	if err := db.AutoMigrate(
		&models.ConnectionSettings{},
		&models.SyncRecord{},
	); err != nil {
		log.Printf("Warning: Auto-migration failed: %v", err)
	}

	// Settings-at-rest encryption
	var encryptor *encryption.CredentialEncryptor
	if cfg.SettingsEncryptionKey != "" {
		encryptor, err = encryption.NewCredentialEncryptor(cfg.SettingsEncryptionKey)
		if err != nil {
			log.Fatalf("Failed to initialize credential encryption: %v", err)
		}
	} else {
		logger.Warn("SETTINGS_ENCRYPTION_KEY not set, secrets cannot be stored via the settings API")
	}

	// Initialize GCP Secret Manager
	var secretManager *secrets.GCPSecretManager
	if cfg.GCPProjectID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		secretManager, err = secrets.NewGCPSecretManager(ctx, cfg.GCPProjectID)
		cancel()
		if err != nil {
			logger.Warn("failed to initialize GCP Secret Manager", zap.Error(err))
		} else {
			defer secretManager.Close()
		}
	}

	// Optional description enrichment
	var enricher services.DescriptionEnricher
	if cfg.GeminiAPIKey != "" {
		enricher = gemini.NewClient(cfg.GeminiAPIKey, cfg.HTTPTimeout, logger)
	}

	// Initialize repositories
	connectionRepo := repository.NewConnectionRepository(db)
	syncRepo := repository.NewSyncRepository(db)

	// Initialize services
	connectionService := services.NewConnectionService(connectionRepo, encryptor, secretManager, cfg, logger)
	catalogService := services.NewCatalogService(connectionService, cfg.CatalogPageSize, logger)
	syncService := services.NewSyncService(connectionService, syncRepo, enricher, logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	syncHandler := handlers.NewSyncHandler(syncService)
	settingsHandler := handlers.NewSettingsHandler(connectionService)

	// Setup router
	router := setupRouter(cfg, healthHandler, catalogHandler, syncHandler, settingsHandler)

	// Start server
	logger.Info("Qualipieces bridge starting",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment))
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter configures the HTTP router
func setupRouter(
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	catalogHandler *handlers.CatalogHandler,
	syncHandler *handlers.SyncHandler,
	settingsHandler *handlers.SettingsHandler,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Security headers middleware
	router.Use(middleware.SecurityHeaders())

	// CORS middleware for the operator UI
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}
	}
	router.Use(middleware.CORS(origins))

	// Health check
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		// ERP catalog
		v1.GET("/catalog/items", catalogHandler.ListItems)

		// Sync runs
		v1.POST("/sync", syncHandler.StartSync)
		v1.GET("/sync/records", syncHandler.ListRecords)
		v1.GET("/sync/status", syncHandler.Status)

		// Connection settings
		v1.GET("/settings", settingsHandler.Get)
		v1.PUT("/settings", settingsHandler.Update)
	}

	return router
}
