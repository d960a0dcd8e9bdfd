package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"expenseminimizer/internal/advisor"
	"expenseminimizer/internal/amqp"
	"expenseminimizer/internal/cli"
	"expenseminimizer/internal/config"
	apphttp "expenseminimizer/internal/http"
	"expenseminimizer/internal/log"
	"expenseminimizer/internal/prompt"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		cli.SetupLogger("info", log.ComponentApp, os.Stderr).Error("Failed to load env file", "error", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp, os.Stdout)

	cfg, err := cli.LoadAndValidateConfig((*config.Config).ValidateProxy)
	if err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Proxy stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *log.Logger) error {
	completer, err := advisor.NewClient(advisor.Config{
		APIKey:      cfg.OpenAIAPIKey,
		Endpoint:    cfg.OpenAIAPIURL,
		Model:       cfg.OpenAIModel,
		Temperature: cfg.OpenAITemperature,
		Timeout:     cfg.UpstreamTimeout,
	})
	if err != nil {
		return err
	}

	opts := apphttp.Options{
		Addr:               ":" + cfg.Port,
		Completer:          completer,
		Builder:            prompt.Builder{},
		Logger:             logger,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	}

	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		defer events.Close()
		if err := events.Connect(); err != nil {
			// Publishing reconnects lazily; the proxy serves chat without events.
			logger.Warn("AMQP broker unavailable at startup", "error", err)
		}
		opts.Publisher = events
		opts.Ready = events.Ready
		logger.Info("Advisory events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Advisory events disabled - no AMQP_URL provided")
	}

	srv := apphttp.NewServer(opts)
	srv.ReadTimeout = 15 * time.Second
	// Upstream calls can take up to UpstreamTimeout.
	srv.WriteTimeout = cfg.UpstreamTimeout + 15*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := cli.GracefulShutdown(context.Background(), logger)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting expense proxy",
			log.FieldOperation, log.OpStartup,
			"addr", srv.Addr,
			log.FieldModel, cfg.OpenAIModel)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down expense proxy", log.FieldOperation, log.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
