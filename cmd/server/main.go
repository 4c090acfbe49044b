package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kenobul/portfolio/internal/api/router"
	"github.com/kenobul/portfolio/internal/app/bootstrap"
	appconfig "github.com/kenobul/portfolio/internal/config"
	"github.com/kenobul/portfolio/internal/content"
	"github.com/kenobul/portfolio/internal/http/handlers"
	httpmiddleware "github.com/kenobul/portfolio/internal/http/middleware"
	"github.com/kenobul/portfolio/internal/notify"
	"github.com/kenobul/portfolio/internal/observability/metrics"
	"github.com/kenobul/portfolio/pkg/logging"
)

func main() {
	if err := appconfig.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
		os.Exit(1)
	}
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting portfolio API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"mail_provider", cfg.MailProvider,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, cleanup, err := buildServer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildServer wires every component. The returned cleanup releases the Redis
// client and the in-process limiter.
func buildServer(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*http.Server, func(), error) {
	metricsHandler, contactMetrics := setupContactMetrics()

	sender, err := bootstrap.BuildEmailSender(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	dispatcher, err := bootstrap.BuildDispatcher(sender, cfg, logger, notify.WithObserver(contactMetrics))
	if err != nil {
		return nil, nil, err
	}

	catalog, err := content.Load()
	if err != nil {
		return nil, nil, err
	}
	carousel := content.NewCarousel(catalog.Testimonials)
	go carousel.Run(ctx, cfg.CarouselInterval)

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	limiter := bootstrap.BuildContactLimiter(redisClient, cfg, logger)

	cleanup := func() {
		if closer, ok := limiter.(interface{ Close() }); ok {
			closer.Close()
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}

	r := router.New(&router.Config{
		Logger:         logger,
		SendEmail:      handlers.NewSendEmailHandler(dispatcher, contactMetrics, logger),
		Content:        content.NewHandler(catalog, carousel, logger),
		ContactLimiter: limiter,
		MetricsHandler: metricsHandler,
		CORS: httpmiddleware.CORSOptions{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: cfg.CORSAllowedMethods,
			AllowedHeaders: cfg.CORSAllowedHeaders,
			MaxAge:         cfg.CORSMaxAge,
		},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return srv, cleanup, nil
}

func setupContactMetrics() (http.Handler, *metrics.ContactMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewContactMetrics(reg)
}
