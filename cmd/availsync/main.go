package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/avelstrom/availsync/adapter/cli"
	"github.com/avelstrom/availsync/internal/app"
	"github.com/avelstrom/availsync/pkg/config"
	"github.com/avelstrom/availsync/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cli.SetLogger(logger)

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

	cli.SetApp(&cli.App{
		ReconcileHandler: container.ReconcileHandler,
		BookingRepo:      container.BookingRepo,
		ProductRepo:      container.ProductRepo,
		ResourceRepo:     container.ResourceRepo,
		Settings:         container.Settings,
		SettingsWriter:   container.SettingsWriter,
	})

	cli.Execute()
}
