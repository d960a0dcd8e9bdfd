package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"expenseminimizer/internal/amqp"
	"expenseminimizer/internal/backend"
	"expenseminimizer/internal/cli"
	"expenseminimizer/internal/config"
	"expenseminimizer/internal/log"
	"expenseminimizer/internal/worker"
)

const summaryInterval = 5 * time.Minute

func main() {
	if err := cli.LoadEnvFile(); err != nil {
		cli.SetupLogger("info", log.ComponentAuditor, os.Stderr).Error("Failed to load env file", "error", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentAuditor, os.Stdout)

	cfg, err := cli.LoadAndValidateConfig(requireAMQP)
	if err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Auditor stopped with error", "error", err)
		os.Exit(1)
	}
}

func requireAMQP(cfg *config.Config) error {
	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for the advisory auditor")
	}
	return nil
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.GracefulShutdown(context.Background(), logger)
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	store, err := backend.NewFactory(logger.WithComponent(log.ComponentStorage).Logger).Open(ctx, bcfg)
	if err != nil {
		return err
	}
	defer store.Close()

	client := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	defer client.Close()

	auditor := worker.NewAuditWorker(store, logger)
	logger.Info("Starting advisory auditor",
		log.FieldOperation, log.OpStartup,
		"queue", cfg.AMQPQueue,
		log.FieldBackend, cfg.StoreBackend)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeAdvisoryEvents(ctx, auditor.HandleAdvisoryEvent)
	})
	g.Go(func() error {
		return auditor.RunSummary(ctx, summaryInterval)
	})
	err = g.Wait()
	logger.Info("Advisory auditor stopped", log.FieldOperation, log.OpShutdown, "events", auditor.Totals().Total())
	return err
}
