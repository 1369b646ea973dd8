package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillhub/internal/config"
	"skillhub/internal/handler"
	"skillhub/internal/logging"
	"skillhub/internal/middleware"
	"skillhub/internal/notify"
	"skillhub/internal/repository"
	"skillhub/internal/service"
	"skillhub/internal/storage"
	"skillhub/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "json").Error(context.Background(), "failed to load config", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg, log); err != nil {
		log.Error(context.Background(), "server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logging.Logger) error {
	ctx := context.Background()

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(ctx, cfg.DB, log)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	// --- Migrations ---
	sqlDB := stdlib.OpenDBFromPool(dbPool)
	if err := config.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return err
	}
	sqlDB.Close()

	// --- Token revocation ---
	var revoked repository.RevocationStore
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		revoked = repository.NewRedisRevocationStore(redisClient)
		log.Info(ctx, "token revocation backed by redis", "addr", cfg.Redis.Addr)
	} else {
		revoked = repository.NewMemoryRevocationStore()
		log.Warn(ctx, "REDIS_ADDR not set, token revocation kept in memory")
	}

	// --- Initialize Utilities ---
	var codec utils.TokenCodec
	switch cfg.Auth.TokenFormat {
	case config.TokenFormatPaseto:
		codec, err = utils.NewPasetoUtil(cfg.Auth.PasetoKey, cfg.Auth.TokenTTL)
		if err != nil {
			return err
		}
	default:
		codec = utils.NewJWTUtil(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	}

	var blobs storage.BlobStore
	switch cfg.Storage.Driver {
	case config.StorageDriverS3:
		blobs, err = storage.NewS3Store(ctx, storage.S3Options{
			Endpoint:  cfg.Storage.S3Endpoint,
			Region:    cfg.Storage.S3Region,
			Bucket:    cfg.Storage.S3Bucket,
			AccessKey: cfg.Storage.S3AccessKey,
			SecretKey: cfg.Storage.S3SecretKey,
		})
	default:
		blobs, err = storage.NewLocalStore(cfg.Storage.UploadsDir)
	}
	if err != nil {
		return err
	}

	var mailer notify.Mailer
	switch cfg.Mail.Driver {
	case config.MailDriverSMTP:
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		})
	default:
		mailer = notify.NewLogMailer(log)
	}
	otpNotifier := notify.NewOTPNotifier(mailer, cfg.Mail.Timeout, service.OTPTTL)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)
	categoryRepo := repository.NewCategoryRepository(dbPool)
	subcategoryRepo := repository.NewSubcategoryRepository(dbPool)
	courseRepo := repository.NewCourseRepository(dbPool)
	cartRepo := repository.NewCartRepository(dbPool)
	favoriteRepo := repository.NewFavoriteRepository(dbPool)
	myCourseRepo := repository.NewMyCourseRepository(dbPool)
	progressRepo := repository.NewProgressRepository(dbPool)

	// --- Initialize Services ---
	tokenService := service.NewTokenService(codec, revoked)
	otpService := service.NewOTPService(userRepo)
	authService := service.NewAuthService(userRepo, tokenService, otpService, otpNotifier,
		log.With("component", "auth"), cfg.Auth.InitialAdminEmail)
	categoryService := service.NewCategoryService(categoryRepo, subcategoryRepo, blobs, log.With("component", "catalog"))
	subcategoryService := service.NewSubcategoryService(subcategoryRepo, categoryRepo, blobs, log.With("component", "catalog"))
	courseService := service.NewCourseService(courseRepo, userRepo)
	libraryService := service.NewLibraryService(subcategoryRepo, cartRepo, favoriteRepo, myCourseRepo)
	progressService := service.NewProgressService(progressRepo)

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService, log)
	catalogHandler := handler.NewCatalogHandler(categoryService, subcategoryService, log)
	courseHandler := handler.NewCourseHandler(courseService, log)
	libraryHandler := handler.NewLibraryHandler(libraryService, log)
	progressHandler := handler.NewProgressHandler(progressService, log)

	// --- Setup Gin Router ---
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))

	// Simple CORS middleware (allow all)
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"status": false, "message": "Method not allowed."})
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"status": false, "message": "Not found."})
	})

	if cfg.Storage.Driver == config.StorageDriverLocal {
		router.Static("/uploads", cfg.Storage.UploadsDir)
	}

	// --- Initialize Middlewares ---
	authMW := middleware.AuthMiddleware(tokenService, log)
	adminMW := middleware.AdminMiddleware()

	// --- Register Routes ---
	apiGroup := router.Group("/api/v1")
	authHandler.RegisterAuthRoutes(apiGroup, authMW, adminMW)
	catalogHandler.RegisterCatalogRoutes(apiGroup, authMW, adminMW)
	courseHandler.RegisterCourseRoutes(apiGroup, authMW, adminMW)
	libraryHandler.RegisterLibraryRoutes(apiGroup, authMW)
	progressHandler.RegisterProgressRoutes(apiGroup, authMW)

	router.GET("/health", func(c *gin.Context) {
		reqCtx := c.Request.Context()
		body := gin.H{"status": "ok", "db": "healthy"}
		status := http.StatusOK
		if err := dbPool.Ping(reqCtx); err != nil {
			body["status"], body["db"] = "error", "unhealthy"
			status = http.StatusServiceUnavailable
		}
		if redisClient != nil {
			body["redis"] = "healthy"
			if err := redisClient.Ping(reqCtx).Err(); err != nil {
				body["status"], body["redis"] = "error", "unhealthy"
				status = http.StatusServiceUnavailable
			}
		}
		c.JSON(status, body)
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}
	log.Info(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info(ctx, "server exiting")
	return nil
}
