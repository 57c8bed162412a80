// @title           CRINF Backoffice API
// @version         1.0.0
// @description     Administrative API for the CRINF store: image editing, full backups, product spreadsheets and site configuration. State changes are published to Supabase Realtime.

// @contact.name   API Support

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"crinf-backoffice/docs"
	"crinf-backoffice/internal/config"
	"crinf-backoffice/internal/database"
	"crinf-backoffice/internal/handlers"
	"crinf-backoffice/internal/imageedit"
	"crinf-backoffice/internal/logging"
	"crinf-backoffice/internal/middleware"
	"crinf-backoffice/internal/segmentation"
	"crinf-backoffice/internal/services"
	"crinf-backoffice/internal/snapshot"
	"crinf-backoffice/internal/state"
	"crinf-backoffice/internal/supabase"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment, os.Getenv("VERBOSE") != "")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		if baseURL, err := url.Parse(cfg.BaseURL); err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Durable state. Without DATABASE_URL the backoffice runs in memory only.
	store := state.NewEmptyStore()
	var persister services.StatePersister
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, state will not survive a restart")
	} else {
		runMigrations(ctx, cfg.DatabaseURL, logger)

		dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to initialize database client", zap.Error(err))
		}
		defer dbClient.Close()

		db, siteCfg, err := dbClient.LoadState(ctx)
		if err != nil {
			logger.Fatal("failed to load state", zap.Error(err))
		}
		store = state.NewStore(db, siteCfg)
		persister = dbClient
		logger.Info("state loaded", zap.Any("collections", db.Counts()))
	}

	// Storage and events
	var (
		storage services.ObjectStorage
		events  supabase.EventPublisher = supabase.NopPublisher{}
	)
	if cfg.StorageEnabled() {
		storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
		if err != nil {
			logger.Fatal("failed to initialize storage client", zap.Error(err))
		}
		storage = storageClient

		supabaseClient, err := supabase.NewClient(cfg)
		if err != nil {
			logger.Fatal("failed to initialize Supabase client", zap.Error(err))
		}
		events = supabase.NewRealtimeClient(supabaseClient.Supabase, cfg.EventsTable)
	} else {
		logger.Warn("Supabase not configured, archives and saved images stay local")
	}

	var remover imageedit.BackgroundRemover
	if cfg.SegmentationAPIURL != "" {
		remover = segmentation.NewClient(cfg.SegmentationAPIURL, cfg.SegmentationAPIKey)
	}

	// Services
	backupService := services.NewBackupService(store, snapshot.NewCodec(), persister, storage, events, logger,
		cfg.SnapshotPrefix, cfg.PreferencesPrefix)
	catalogService := services.NewCatalogService(store, persister, events, logger)
	imageService := services.NewImageService(cfg.ImageSessionTTL, remover, storage, events, logger).
		WithMaxPixels(cfg.MaxImagePixels)
	go imageService.Run(ctx, time.Minute)

	// Handlers
	imagesHandler := handlers.NewImagesHandler(imageService, cfg.MaxUploadBytes, logger)
	backupHandler := handlers.NewBackupHandler(backupService, cfg.MaxUploadBytes, logger)
	catalogHandler := handlers.NewCatalogHandler(catalogService, cfg.MaxUploadBytes, logger)

	// Setup router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.GET("/config", catalogHandler.GetConfig)
	api.PUT("/config", catalogHandler.UpdateConfig)
	api.GET("/collections/:name", catalogHandler.GetCollection)
	api.PUT("/collections/:name", catalogHandler.ReplaceCollection)

	api.GET("/backup", backupHandler.Download)
	api.POST("/backup/restore", backupHandler.Restore)
	api.POST("/backup/archive", backupHandler.Archive)
	api.GET("/backup/preferences", backupHandler.DownloadPreferences)
	api.POST("/backup/preferences/restore", backupHandler.RestorePreferences)

	api.GET("/products/export", catalogHandler.ExportProducts)
	api.POST("/products/import", catalogHandler.ImportProducts)

	api.POST("/images/sessions", imagesHandler.CreateSession)
	api.PATCH("/images/sessions/:session_id", imagesHandler.UpdateSession)
	api.PATCH("/images/sessions/:session_id/params/:name", imagesHandler.SetParameter)
	api.DELETE("/images/sessions/:session_id", imagesHandler.CancelSession)
	api.GET("/images/sessions/:session_id/preview", imagesHandler.Preview)
	api.POST("/images/sessions/:session_id/save", imagesHandler.SaveSession)
	api.POST("/images/sessions/:session_id/remove-background", imagesHandler.RemoveBackground)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func runMigrations(ctx context.Context, dbURL string, logger *zap.Logger) {
	migrator, err := database.NewMigrator(dbURL, logger)
	if err != nil {
		logger.Fatal("failed to initialize migrator", zap.Error(err))
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	logger.Info("migrations completed successfully")
}
