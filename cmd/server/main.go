package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"gymlog/internal/cli"
	"gymlog/internal/config"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func newLogger() (*zap.Logger, error) {
	if strings.EqualFold(os.Getenv(config.EnvAppEnv), "development") {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	_ = godotenv.Load()

	logger, err := newLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.NewRootCmd(version, logger).ExecuteContext(ctx); err != nil {
		logger.Error("command failed", zap.Error(err))
		cancel()
		logger.Sync()
		os.Exit(1)
	}
}
