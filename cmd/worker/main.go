package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/avelstrom/availsync/internal/app"
	"github.com/avelstrom/availsync/internal/shared/infrastructure/eventbus"
	"github.com/avelstrom/availsync/pkg/config"
	"github.com/avelstrom/availsync/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	logger.Info("starting availsync worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.RabbitMQURL == "" {
		logger.Error("RABBITMQ_URL is required in worker mode")
		os.Exit(1)
	}

	var container *app.Container
	if cfg.LocalMode {
		container, err = app.NewLocalContainer(ctx, cfg, logger)
	} else {
		container, err = app.NewContainer(ctx, cfg, logger)
	}
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:       cfg.RabbitMQURL,
		QueueName: cfg.ConsumerQueue,
		Logger:    logger,
	}, eventbus.NewConsumerRegistry(logger))
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	consumer.RegisterConsumer(container.BookingSubscriber)

	logger.Info("consuming booking lifecycle events", "queue", cfg.ConsumerQueue)
	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		logger.Error("consumer stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("worker shut down")
}
