// Package testutil provides testing utilities and helpers for the forum gateway.
package testutil

import (
	"context"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// TestingTB is an interface that covers both *testing.T and *testing.B.
type TestingTB interface {
	Helper()
	Skip(args ...interface{})
	Skipf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
	Cleanup(func())
}

// SetupTestRedis returns a Redis client for tests.
// When REDIS_ADDR is set a real server is used and its DB is flushed; otherwise
// an in-process miniredis instance backs the client.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return connectRealRedis(t, addr)
	}

	client, _ := SetupMiniRedis(t)
	return client
}

// SetupMiniRedis starts a miniredis server and returns a client for it along
// with the server handle so tests can fast-forward TTLs.
func SetupMiniRedis(t TestingTB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("warning: failed to close redis client: %v", cerr)
		}
		mr.Close()
	})
	return client, mr
}

func connectRealRedis(t TestingTB, addr string) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			t.Logf("warning: failed to close redis client after ping error: %v", cerr)
		}
		if envBool("TEST_REQUIRE_REDIS") {
			t.Fatalf("Redis not available for testing at %s: %v", addr, err)
		}
		t.Skipf("Redis not available for testing at %s: %v", addr, err)
	}

	client.FlushDB(ctx)
	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("warning: failed to close redis client: %v", cerr)
		}
	})
	return client
}

func envBool(key string) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "yes":
		return true
	}
	return false
}

// FixedTimeFunc returns a function that always returns the given time.
func FixedTimeFunc(t time.Time) func() time.Time {
	return func() time.Time {
		return t
	}
}

// TestTime returns a fixed time for consistent testing.
func TestTime() time.Time {
	return time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
}
