package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/branchmove/branch-service/config"
	_ "github.com/branchmove/branch-service/docs"
	"github.com/branchmove/branch-service/internal/advisor"
	"github.com/branchmove/branch-service/internal/database"
	"github.com/branchmove/branch-service/internal/generator"
	"github.com/branchmove/branch-service/internal/handlers"
	"github.com/branchmove/branch-service/internal/middleware"
	"github.com/branchmove/branch-service/internal/scoring"
	"github.com/branchmove/branch-service/internal/storage"
	"github.com/branchmove/branch-service/internal/store"
	"github.com/branchmove/branch-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Str("store", cfg.Store.Type).Str("provider", cfg.AI.Provider).Msg("Starting branch service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	branchStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open branch store")
	}
	defer database.Close()

	gen, cacheCloser, err := generator.New(&cfg.AI, *logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to configure text generator")
	}

	engine := scoring.NewEngine(&cfg.Scoring, *logger)
	adv := advisor.New(branchStore, gen, engine, advisor.Config{
		GeneratorTimeout: cfg.AI.Timeout,
		FallbackPick:     cfg.Fallback.DefaultPick,
	}, *logger)

	handlers.InitRecommender(adv)
	handlers.InitStore(branchStore)
	if err := handlers.RegisterValidators(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to register request validators")
	}

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limited := middleware.RateLimitMiddleware(ctx, cfg.RateLimit)

	api := router.Group("/api")
	{
		api.GET("/branches", handlers.ListBranches)
		api.GET("/criteria", handlers.ListCriteria)
		api.POST("/recommendations", limited, handlers.Recommend)
	}

	// Path kept for existing clients.
	router.POST("/gemini", limited, handlers.Recommend)

	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if cacheCloser != nil {
		if err := cacheCloser.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close response cache")
		}
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Failed to flush telemetry")
	}

	logger.Info().Msg("Server exited")
}

func openStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (store.Store, error) {
	switch cfg.Store.Type {
	case store.TypeFile:
		blobs, err := storage.NewLocalStorage(cfg.Store.BasePath)
		if err != nil {
			return nil, err
		}
		fs := store.NewFileStore(blobs, cfg.Store.File, *logger)
		if err := fs.Ping(ctx); err != nil {
			// The server still starts; health reports the store as unavailable.
			logger.Warn().Err(err).Str("path", blobs.GetBasePath()).Str("file", cfg.Store.File).Msg("Branch dataset not readable")
		}
		return fs, nil

	case store.TypePostgres:
		if err := database.Connect(ctx, database.Options{
			URL:             cfg.Database.URL,
			MaxConns:        cfg.Database.MaxConnections,
			MinConns:        cfg.Database.MinConnections,
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		}); err != nil {
			return nil, err
		}
		pg := store.NewPostgresStore(database.Pool())
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		logger.Info().Msg("Database connected")
		return pg, nil
	}
	return nil, fmt.Errorf("unknown store type: %q", cfg.Store.Type)
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "branch-service").Logger()
	log.Logger = logger
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(middleware.RequestID())
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Str("request_id", middleware.GetRequestID(c)).
			Msg("HTTP request")
	})
}
