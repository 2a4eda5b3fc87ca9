package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adda-Baaj/khobor-digest/internal/app"
	"github.com/Adda-Baaj/khobor-digest/internal/config"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "digest failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("digest starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	digester, err := app.NewDigester(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize digester", "error", err)
		return err
	}

	res, err := digester.Run(ctx)
	if err != nil {
		return fmt.Errorf("digest run: %w", err)
	}

	fmt.Println(res.Path)
	return nil
}
