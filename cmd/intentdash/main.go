package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"intentdash/internal/amqp"
	"intentdash/internal/cache"
	"intentdash/internal/chart"
	"intentdash/internal/cli"
	apphttp "intentdash/internal/http"
	applog "intentdash/internal/log"
	"intentdash/internal/services"
	"intentdash/internal/theme"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		applog.New(applog.DefaultConfig()).Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg)
	startCtx := context.Background()

	prefs, err := cli.InitPreferences(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize preference store", applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeDatabase)
		os.Exit(1)
	}
	defer prefs.Close()

	feeds, err := cli.InitFeeds(startCtx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize feed backend", applog.FieldError, err,
			"backend", cfg.FeedBackend)
		os.Exit(1)
	}
	defer feeds.Close()

	// Degraded-feed events are optional; a broker that is down at start-up
	// only disables them.
	var publisher services.FeedEventPublisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.WithComponent(applog.ComponentAMQP).Warn("AMQP unavailable, feed events disabled",
				applog.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.WithComponent(applog.ComponentAMQP).Info("Publishing feed events",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	dashboard := services.NewDashboardService(feeds.Live, feeds.Fallback, publisher, logger)

	svgCache := cache.NewLRUCache[string](cfg.ChartCacheSize, cfg.ChartCacheTTL)
	cacheManager := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	cacheManager.Register(svgCache)
	cacheManager.StartCleanup(cfg.ChartCacheTTL / 2)
	charts := chart.NewRenderer(svgCache)

	themes := theme.NewStore(startCtx, prefs, logger.WithComponent(applog.ComponentTheme).Logger)
	themes.Subscribe(func(theme.Theme) { charts.Reset() })

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Dashboard:          dashboard,
		Charts:             charts,
		Theme:              themes,
		Preferences:        prefs,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		ChartStats:         svgCache.Stats,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		themes.Close()
		cacheManager.Stop()
	})

	logger.Info("Starting intentdash server",
		"port", cfg.Port,
		"backend", feeds.Backend.String(),
		"preferences", cfg.PreferenceStore,
		applog.FieldTheme, themes.Theme().String(),
		applog.FieldOperation, applog.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
