package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/mhsn/forumweb/config"
)

// Run starts the gateway and blocks until SIGINT/SIGTERM or a server failure.
func Run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics, closeMetrics := NewMetrics(cfg.Observability.Metrics, logger)
	defer func() {
		if err := closeMetrics(); err != nil {
			logger.ErrorContext(ctx, "close metrics failed", "error", err)
		}
	}()

	var rdb redis.UniversalClient
	if cfg.Session.Storage == config.StorageRedis {
		client, err := ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		rdb = client
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", err)
			}
		}()
	}

	sessions, err := NewSessions(SessionDeps{
		Config:  cfg,
		Redis:   rdb,
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	handler, err := NewHTTPHandler(HTTPHandlerConfig{
		Config:   cfg,
		Sessions: sessions,
		Metrics:  metrics,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	server := newServer(cfg.HTTP, handler)
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", server.Addr, err)
	}
	return serve(ctx, server, ln, cfg.HTTP.ShutdownTimeout, logger)
}
