package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"TrendScanner/internal/app"
	"TrendScanner/internal/config"
	"TrendScanner/internal/logging"
)

func main() {
	serve := flag.Bool("serve", false, "run on the configured cron schedule instead of once")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if *serve {
		err = application.Serve(ctx)
	} else {
		err = application.RunOnce(ctx)
	}
	if err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
