package main

import (
	"context"
	"fmt"
	"os"

	"calcula/internal/cli"
	"calcula/internal/log"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	app, err := cli.Init(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to start", log.FieldError, err, log.FieldOperation, log.OpStartup)
		os.Exit(1)
	}

	runErr := dispatch(ctx, app, os.Args[1:], os.Stdout)
	if err := app.Close(); err != nil {
		logger.Error("Failed to close store", log.FieldError, err, log.FieldOperation, log.OpShutdown)
	}
	if runErr != nil {
		fmt.Fprintln(os.Stderr, "error:", runErr)
		os.Exit(1)
	}
}
