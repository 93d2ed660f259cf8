package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/mhsn/forumweb/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}

	logger := bootstrap.InitLogger(cfg.Observability.Logging)
	logger.InfoContext(ctx, "starting forum gateway",
		"addr", cfg.HTTP.Addr,
		"api", cfg.API.BaseURL,
		"session_storage", cfg.Session.Storage,
		"dev", cfg.IsDev)

	if err := bootstrap.Run(ctx, &cfg, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}
