package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/pilates-studio/internal/config"
	"github.com/iliyamo/pilates-studio/internal/database"
	"github.com/iliyamo/pilates-studio/internal/handler"
	"github.com/iliyamo/pilates-studio/internal/logging"
	"github.com/iliyamo/pilates-studio/internal/metrics"
	"github.com/iliyamo/pilates-studio/internal/middleware"
	"github.com/iliyamo/pilates-studio/internal/queue"
	"github.com/iliyamo/pilates-studio/internal/repository"
	"github.com/iliyamo/pilates-studio/internal/router"
	"github.com/iliyamo/pilates-studio/internal/seed"
	"github.com/iliyamo/pilates-studio/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func openDB(cfg config.Config) (*database.DB, error) {
	if cfg.DBDriver == config.DriverSQLite {
		return database.OpenSQLite(cfg.DBPath)
	}
	return database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connected", zap.String("driver", string(db.Dialect)))

	if cfg.DBMigrate {
		version, err := database.Migrate(ctx, db, logger)
		if err != nil {
			return err
		}
		logger.Info("schema ready", zap.Int64("version", version))
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	classes := repository.NewClassRepo(db)
	bookings := repository.NewBookingRepo(db)
	catalogRepo := repository.NewCatalogRepo(db)

	if cfg.SeedDemoData {
		if err := seed.New(users, catalogRepo, classes, cfg.BcryptCost, logger).Run(ctx); err != nil {
			return err
		}
	}

	var events service.EventPublisher = queue.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		events = queue.NewPublisher(cfg.RabbitMQURL, logger)
	} else {
		logger.Warn("RABBITMQ_URL not set, booking events are disabled")
	}

	metrics.Register()
	catalog := service.NewCatalogService(db, classes, bookings, catalogRepo, logger)
	engine := service.NewBookingService(db, classes, bookings, events, logger)

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, using in-process rate limiting and no response cache")
	} else {
		defer rdb.Close()
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(logging.RequestLogger(logger))
	e.Use(echomw.CORS())

	catalogHandler := handler.NewCatalogHandler(catalog, logger)
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, logger), cfg.JWTSecret, limiter)
	router.RegisterPublic(e, handler.NewClassHandler(catalog, logger), catalogHandler, limiter, cache)
	router.RegisterCustomer(e, handler.NewBookingHandler(engine, logger), catalogHandler, cfg.JWTSecret, limiter)
	router.RegisterStaff(e, handler.NewStaffHandler(catalog, logger), cfg.JWTSecret, limiter)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownWait)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
