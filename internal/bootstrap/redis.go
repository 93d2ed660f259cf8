package bootstrap

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mhsn/forumweb/config"
)

const redisPingTimeout = 5 * time.Second

// ConnectRedis establishes a connection to Redis for durable token storage.
//
//nolint:ireturn // returning redis.UniversalClient lets us pick single, sentinel, or cluster clients at runtime.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	var (
		client   redis.UniversalClient
		addrDesc string
		err      error
	)

	switch {
	case cfg.UseCluster:
		client, addrDesc, err = newClusterClient(cfg)
	case cfg.UseSentinel:
		client, addrDesc, err = newSentinelClient(cfg)
	default:
		client, addrDesc, err = newDirectClient(cfg)
	}
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if pingErr := client.Ping(pingCtx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}

	if logger != nil {
		logger.InfoContext(ctx, "redis connected", "addr", redactAddr(addrDesc))
	}

	return client, nil
}

// redactAddr strips credentials from a connection description.
func redactAddr(addr string) string {
	if u, err := url.Parse(addr); err == nil && u.User != nil {
		u.User = url.User("*")
		return u.Redacted()
	}
	if i := strings.LastIndex(addr, "@"); i > -1 {
		return addr[i+1:]
	}
	return addr
}

//nolint:ireturn // returning redis.UniversalClient keeps client selection flexible.
func newClusterClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	addrs := normalizeAddrs(cfg.ClusterNodes)
	password := cfg.Password
	username := ""
	var tlsConfig *tls.Config

	if len(addrs) == 0 {
		fb, err := clusterFallbackFromURI(cfg.URI, password)
		if err != nil {
			return nil, "", err
		}
		if fb.addr != "" {
			addrs = []string{fb.addr}
			username = fb.username
			password = fb.password
			tlsConfig = fb.tls
		}
	}

	if len(addrs) == 0 {
		return nil, "", errors.New("redis cluster configuration requires at least one address")
	}

	client := redis.NewClusterClient(&redis.ClusterOptions{
		Addrs:     addrs,
		Username:  username,
		Password:  password,
		TLSConfig: tlsConfig,
	})
	return client, "cluster:" + strings.Join(addrs, ","), nil
}

//nolint:ireturn // returning redis.UniversalClient keeps client selection flexible.
func newSentinelClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	nodes := normalizeAddrs(cfg.SentinelNodes)
	if len(nodes) == 0 {
		return nil, "", errors.New("redis sentinel configuration requires at least one sentinel node")
	}

	client := redis.NewFailoverClient(&redis.FailoverOptions{
		MasterName:       cfg.SentinelMasterName,
		SentinelAddrs:    nodes,
		Password:         cfg.Password,
		SentinelPassword: cfg.SentinelPassword,
		DB:               cfg.DB,
	})
	return client, "sentinel:" + cfg.SentinelMasterName, nil
}

//nolint:ireturn // returning redis.UniversalClient keeps client selection flexible.
func newDirectClient(cfg config.RedisConfig) (redis.UniversalClient, string, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, "", errors.New("redis direct configuration requires a URI")
	}

	if isRedisURL(uri) {
		opt, err := redis.ParseURL(uri)
		if err != nil {
			return nil, "", fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), opt.Addr, nil
	}

	return redis.NewClient(&redis.Options{
		Addr:     uri,
		Password: cfg.Password,
		DB:       cfg.DB,
	}), uri, nil
}

func normalizeAddrs(raw []string) []string {
	result := make([]string, 0, len(raw))
	for _, addr := range raw {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

type clusterFallback struct {
	addr     string
	username string
	password string
	tls      *tls.Config
}

// clusterFallbackFromURI seeds a cluster client from REDIS_URI when no
// explicit cluster nodes are configured.
func clusterFallbackFromURI(uri, defaultPassword string) (clusterFallback, error) {
	fb := clusterFallback{password: defaultPassword}
	trimmed := strings.TrimSpace(uri)
	if trimmed == "" {
		return fb, nil
	}
	if !isRedisURL(trimmed) {
		fb.addr = trimmed
		return fb, nil
	}

	opt, err := redis.ParseURL(trimmed)
	if err != nil {
		return fb, fmt.Errorf("parse redis cluster url: %w", err)
	}
	fb.addr = opt.Addr
	fb.username = opt.Username
	fb.tls = opt.TLSConfig
	if opt.Password != "" {
		fb.password = opt.Password
	}
	return fb, nil
}

func isRedisURL(value string) bool {
	return strings.HasPrefix(value, "redis://") || strings.HasPrefix(value, "rediss://")
}
