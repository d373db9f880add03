package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"tweet-suggester/internal/adapters/auth"
	"tweet-suggester/internal/adapters/metrics"
	"tweet-suggester/internal/adapters/web"
	"tweet-suggester/internal/bootstrap"
	"tweet-suggester/internal/config"
	"tweet-suggester/internal/usecases"
	"tweet-suggester/pkg/log"
	"tweet-suggester/pkg/log/transporters"
)

func main() {
	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "config/app.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.GlobalError("failed to load config", "error", err)
		os.Exit(1)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.Info
	}
	logger := log.New(level, transporters.NewStdout())
	log.SetDefault(logger)
	defer logger.Close()

	if err := run(cfg); err != nil {
		log.GlobalError("server stopped", "error", err)
		logger.Close()
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize adapters
	tweets, err := bootstrap.OpenStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer tweets.Close()

	sessions, err := bootstrap.OpenSessions(ctx, cfg.Session)
	if err != nil {
		return err
	}
	defer sessions.Close()

	tags, err := bootstrap.LoadTags(cfg.TagsFile, tweets, bootstrap.TagReloadInterval)
	if err != nil {
		return err
	}
	defer tags.Close()

	m := metrics.New()

	// Initialize use cases
	engine := usecases.NewSuggestionEngine(tweets, sessions,
		usecases.WithSampleSize(cfg.Engine.SampleSize),
		usecases.WithRecorder(m),
	)

	// Initialize web handlers
	handlers := web.NewHandlers(engine, tags, web.HandlersConfig{
		AuthRequired:   cfg.Auth.Required,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	rateLimiter := web.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	defer rateLimiter.Close()

	// Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:               "Tweet Suggester",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(web.RequestIDConfig()))
	app.Use(web.RequestContextMiddleware())
	app.Use(web.AccessLogMiddleware())
	app.Use(m.Middleware())
	app.Use(auth.Middleware(auth.NewVerifier(cfg.Auth.JWTSecret)))

	// Setup routes
	web.SetupRoutes(app, handlers, web.RouteOptions{
		StaticDir:      cfg.Server.StaticDir,
		RateLimiter:    rateLimiter,
		Metrics:        m.Handler(),
		RequireAPIUser: cfg.Auth.Required,
	})

	errCh := make(chan error, 1)
	go func() {
		log.GlobalInfo("starting tweet suggester",
			"port", cfg.Server.Port,
			"store", cfg.Store.Driver,
			"session", cfg.Session.Driver,
			"auth_required", cfg.Auth.Required,
		)
		errCh <- app.Listen(":" + cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.GlobalInfo("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
