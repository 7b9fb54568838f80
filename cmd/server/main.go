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

	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"coursehub/docs"
	"coursehub/internal/auth"
	"coursehub/internal/cache"
	"coursehub/internal/config"
	"coursehub/internal/db"
	"coursehub/internal/handler"
	"coursehub/internal/logging"
	"coursehub/internal/repository"
	"coursehub/internal/router"
	"coursehub/internal/service"
	"coursehub/internal/upload"
)

const shutdownTimeout = 10 * time.Second

// @title CourseHub API
// @version 1.0
// @description Learning content platform: user and admin accounts, server-side sessions, course uploads, assignments and quizzes.
// @host localhost:3000
// @BasePath /
// @schemes http
func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			logger.Warn("close database", zap.Error(err))
		}
	}()

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.DropAll(gormDB); err != nil {
			logger.Warn("drop tables", zap.Error(err))
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("auto-migrate", zap.Error(err))
	}

	// Session store. Redis also backs the listing cache.
	var (
		store       auth.Store
		listCache   service.ListCache
		cacheClient *cache.Client
		sweeper     *cron.Cron
	)
	switch cfg.SessionBackend {
	case config.SessionBackendMemory:
		memStore := auth.NewMemoryStore()
		sweeper, err = memStore.StartSweeper(cfg.SessionSweepSchedule, logger)
		if err != nil {
			logger.Fatal("session sweeper", zap.Error(err))
		}
		store = memStore
	case config.SessionBackendRedis:
		cacheClient = cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := cacheClient.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Fatal("redis ping", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		store = auth.NewRedisStore(cacheClient)
		listCache = cacheClient
	default:
		logger.Fatal("unknown session backend", zap.String("backend", cfg.SessionBackend))
	}
	logger.Info("session store ready", zap.String("backend", cfg.SessionBackend))

	sessions := auth.NewManager(store, auth.ManagerConfig{
		CookieName: cfg.SessionCookieName,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.SessionCookieSecure,
	})

	uploads := upload.NewRouter(upload.Buckets{
		PDFDir:   cfg.UploadPDFDir,
		VideoDir: cfg.UploadVideoDir,
	})
	if err := uploads.EnsureDirs(); err != nil {
		logger.Fatal("upload dirs", zap.Error(err))
	}

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(gormDB)
	courseRepo := repository.NewCourseRepository(gormDB)
	assignmentRepo := repository.NewAssignmentRepository(gormDB)
	quizRepo := repository.NewQuizRepository(gormDB)

	// Initialize services
	authService := service.NewAuthService(accountRepo, auth.NewBcryptHasher(cfg.BcryptCost), sessions, logger, cfg.StoreTimeout)
	courseService := service.NewCourseService(courseRepo, uploads, listCache, logger, service.CourseOptions{
		StoreTimeout:   cfg.StoreTimeout,
		UploadTimeout:  cfg.UploadTimeout,
		CleanupOrphans: cfg.CleanupOrphanedUploads,
	})
	assignmentService := service.NewAssignmentService(assignmentRepo, listCache, logger, cfg.StoreTimeout)
	quizService := service.NewQuizService(quizRepo, listCache, logger, cfg.StoreTimeout)

	// Initialize handlers
	pageHandler := handler.NewPageHandler(cfg.PublicDir)
	authHandler := handler.NewAuthHandler(authService, sessions, cfg.LegacyLoginFailure)
	courseHandler := handler.NewCourseHandler(courseService, assignmentService, quizService)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, logger, sessions, pageHandler, authHandler, courseHandler)

	addr := ":" + cfg.ServerPort
	go func() {
		logger.Info("server starting", zap.String("addr", addr), zap.String("swagger", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if sweeper != nil {
		<-sweeper.Stop().Done()
	}
	if cacheClient != nil {
		if err := cacheClient.Close(); err != nil {
			logger.Warn("close redis", zap.Error(err))
		}
	}
}
