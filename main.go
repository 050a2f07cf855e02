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

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"edrisobaric/internal/acquire"
	"edrisobaric/internal/edrerr"
	"edrisobaric/internal/grib"
)

// loadDataset resolves, decodes and validates the data file.
func loadDataset(ctx context.Context, cfg Config, logger *zap.Logger) (*grib.Dataset, error) {
	path, err := acquire.Acquire(ctx, cfg.AcquireOptions(), logger)
	if err != nil {
		return nil, err
	}
	return grib.Open(ctx, path, logger)
}

// newServer builds the echo instance with middleware and routes.
func newServer(svc *edrService, sugar *zap.SugaredLogger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())

	// Use custom request logger
	e.Use(CustomRequestLogger(sugar))
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(
		rate.Limit(svc.cfg.Server.RateLimit),
	)))

	// CORS configuration
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: svc.cfg.CORS.AllowedOrigins,
		AllowMethods: []string{echo.GET, echo.HEAD, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	registerRoutes(e, svc)
	return e
}

func main() {
	flags := newFlagSet()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	configPath, _ := flags.GetString("config")

	// Load environment variables
	envErr := godotenv.Load()

	if err := LoadConfig(configPath, flags); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}
	cfg := AppConfig

	// Initialize logger
	logger, err := initLogger(cfg.Server)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	sugar := logger.Sugar()

	if envErr != nil {
		sugar.Debugw("No .env file loaded", "error", envErr)
	}

	// Conflicting options are reported before any download or port binding.
	if err := acquire.CheckOptions(cfg.AcquireOptions()); err != nil {
		sugar.Fatalw("❌ Invalid dataset options",
			"error", err,
		)
	}

	ds, err := loadDataset(context.Background(), cfg, logger)
	if err != nil {
		var acqErr *edrerr.AcquisitionError
		if errors.As(err, &acqErr) {
			sugar.Fatalw("❌ Unable to load data file",
				"file", acqErr.File,
				"error", err,
			)
		}
		sugar.Fatalw("❌ Unable to load data file",
			"file", cfg.Dataset.File,
			"time", cfg.Dataset.Time,
			"error", err,
		)
	}

	svc, err := newEDRService(cfg, ds, logger)
	if err != nil {
		sugar.Fatalw("Failed to set up service",
			"error", err,
		)
	}

	e := newServer(svc, sugar)

	sugar.Infow("✨ Server starting",
		"address", "\x1b[36m"+cfg.ListenAddress()+"\x1b[0m",
		"base_url", cfg.Server.BaseURL,
		"instance", grib.InstanceID(ds),
	)

	go func() {
		if err := e.Start(cfg.ListenAddress()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("💥 Server failed to start",
				"error", "\x1b[31m"+err.Error()+"\x1b[0m",
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sugar.Info("Shutting down server")
	if err := e.Shutdown(ctx); err != nil {
		sugar.Errorw("Server shutdown failed", "error", err)
	}
}
