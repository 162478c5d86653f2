package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/retail_api/internal/cache"
	"github.com/GTDGit/retail_api/internal/config"
	"github.com/GTDGit/retail_api/internal/database"
	"github.com/GTDGit/retail_api/internal/handler"
	"github.com/GTDGit/retail_api/internal/importer"
	"github.com/GTDGit/retail_api/internal/metrics"
	"github.com/GTDGit/retail_api/internal/middleware"
	"github.com/GTDGit/retail_api/internal/repository"
	"github.com/GTDGit/retail_api/internal/service"
	"github.com/GTDGit/retail_api/internal/sse"
	"github.com/GTDGit/retail_api/internal/utils"
)

// main is the application entrypoint for the retail product import API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger, JWT and CORS
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting retail api")
	utils.SetJWTConfig(cfg.JWTSecret, cfg.JWTTTL)
	middleware.AllowOrigins(cfg.CORSOrigins...)

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 3c. Import lock and last-import cache
	importLock := cache.NewImportLock(redisClient, cfg.Import.LockTTL)
	summaryCache := cache.NewImportSummaryCache(redisClient, cfg.Import.SummaryTTL)

	// 4. Metrics and SSE hub
	m := metrics.New(cfg.MetricsPrefix, prometheus.DefaultRegisterer)
	hub := sse.NewHub()

	// 5. Initialize repositories
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	userRepo := repository.NewUserRepository(db)

	// 6. Initialize services
	authSvc := service.NewAuthService(userRepo, m)
	catalogSvc := service.NewCatalogService(productRepo, categoryRepo)
	importSvc := service.NewImportService(
		importer.New(productRepo, categoryRepo),
		importLock,
		summaryCache,
		sse.NewHubNotifier(hub),
		m,
		cfg.Import,
	)

	// 6a. Archive uploads to S3 when a bucket is configured
	if cfg.S3.Enabled() {
		s3Svc, err := service.NewS3Service(context.Background(), &cfg.S3)
		if err != nil {
			log.Warn().Err(err).Msg("S3 service initialization failed - import archiving will be disabled")
		} else {
			importSvc.SetArchiver(s3Svc)
			log.Info().Str("bucket", cfg.S3.Bucket).Msg("Import archiving enabled")
		}
	}

	// 6b. Create the bootstrap user
	if cfg.Bootstrap.Enabled() {
		bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
		created, err := authSvc.EnsureUser(bootCtx, cfg.Bootstrap.CompanyID, cfg.Bootstrap.Email, cfg.Bootstrap.Password, cfg.Bootstrap.Name)
		bootCancel()
		if err != nil {
			log.Error().Err(err).Msg("bootstrap user creation failed")
		} else if created {
			log.Info().Str("email", cfg.Bootstrap.Email).Str("company_id", cfg.Bootstrap.CompanyID).Msg("bootstrap user created")
		}
	}

	// 7. Initialize handlers
	loginLimiter := middleware.NewInvalidAuthRateLimiter(cfg.Auth.MaxFailedLogins, cfg.Auth.FailedLoginWindow)
	handlers := &Handlers{
		Health:  handler.NewHealthHandler(db, handler.PingFunc(redisClient.Ping)),
		Auth:    handler.NewAuthHandler(authSvc, loginLimiter),
		Import:  handler.NewImportHandler(importSvc, cfg.Import.MaxUploadBytes()),
		Catalog: handler.NewCatalogHandler(catalogSvc),
		SSE:     handler.NewSSEHandler(hub),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware(m))
	setupRoutes(router, handlers, jwtMw)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start background cleanup
	go loginLimiter.Cleanup(ctx, time.Minute)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop background work
	cancel()

	// 15. Shutdown HTTP server with timeout; running imports get the import timeout to finish.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Import.Timeout+10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *handler.HealthHandler
	Auth    *handler.AuthHandler
	Import  *handler.ImportHandler
	Catalog *handler.CatalogHandler
	SSE     *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/v1/auth/login", handlers.Auth.Login)

	// Import events (token passed as query param)
	router.GET("/v1/events", handlers.SSE.Stream)

	imports := router.Group("/v1/imports/products")
	imports.GET("/template", handlers.Import.GetTemplate)
	imports.Use(jwtMiddleware.Handle())
	{
		imports.POST("", handlers.Import.ImportProducts)
		imports.GET("/last", handlers.Import.GetLastImport)
	}

	api := router.Group("/v1")
	api.Use(jwtMiddleware.Handle())
	{
		api.GET("/products", handlers.Catalog.ListProducts)
		api.GET("/categories", handlers.Catalog.ListCategories)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
