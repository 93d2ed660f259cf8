package statsd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Sink is what session and API code emit metrics through.
type Sink interface {
	Count(name string, value int64, tags map[string]string)
	Gauge(name string, value float64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Count(string, int64, map[string]string)          {}
func (Nop) Gauge(string, float64, map[string]string)        {}
func (Nop) Timing(string, time.Duration, map[string]string) {}

// Config describes how to reach a StatsD-compatible agent.
type Config struct {
	Enabled    bool
	Address    string
	Prefix     string
	Logger     *slog.Logger
	GlobalTags map[string]string
}

// Client writes DogStatsD-style lines over UDP. Safe for concurrent use.
// A disabled client accepts calls and drops them.
type Client struct {
	prefix string
	tags   map[string]string
	logger *slog.Logger

	mu   sync.Mutex
	conn net.Conn
}

var (
	_ Sink = (*Client)(nil)
	_ Sink = Nop{}
)

// NewClient dials the agent unless metrics are disabled or no address is set.
func NewClient(cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		prefix: strings.Trim(strings.TrimSpace(cfg.Prefix), "."),
		tags:   cleanTags(cfg.GlobalTags),
		logger: logger,
	}

	addr := strings.TrimSpace(cfg.Address)
	if !cfg.Enabled || addr == "" {
		return c, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := (&net.Dialer{}).DialContext(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("statsd dial %s: %w", addr, err)
	}
	c.conn = conn
	return c, nil
}

// Enabled reports whether lines are actually sent.
func (c *Client) Enabled() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Client) Count(name string, value int64, tags map[string]string) {
	c.send(name, strconv.FormatInt(value, 10), "c", tags)
}

func (c *Client) Gauge(name string, value float64, tags map[string]string) {
	c.send(name, strconv.FormatFloat(value, 'f', -1, 64), "g", tags)
}

// Timing records milliseconds.
func (c *Client) Timing(name string, value time.Duration, tags map[string]string) {
	ms := float64(value) / float64(time.Millisecond)
	c.send(name, strconv.FormatFloat(ms, 'f', -1, 64), "ms", tags)
}

// Close releases the UDP socket; later calls become no-ops.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) send(name, value, kind string, tags map[string]string) {
	if c == nil {
		return
	}
	line := c.Line(name, value, kind, tags)
	if line == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	if _, err := c.conn.Write([]byte(line)); err != nil {
		c.logger.Debug("statsd write failed", "error", err)
	}
}

// Line renders one metric as "<prefix>.<name>:<value>|<kind>|#k:v,...".
// It returns "" for an empty name.
func (c *Client) Line(name, value, kind string, tags map[string]string) string {
	metric := metricName(name)
	if metric == "" {
		return ""
	}
	var b strings.Builder
	if c.prefix != "" {
		b.WriteString(c.prefix)
		b.WriteByte('.')
	}
	b.WriteString(metric)
	b.WriteByte(':')
	b.WriteString(value)
	b.WriteByte('|')
	b.WriteString(kind)
	writeTags(&b, c.tags, tags)
	return b.String()
}

func metricName(name string) string {
	n := strings.NewReplacer(" ", "_", "/", "_").Replace(strings.TrimSpace(name))
	for strings.Contains(n, "..") {
		n = strings.ReplaceAll(n, "..", ".")
	}
	return strings.Trim(n, ".")
}

func writeTags(b *strings.Builder, global, local map[string]string) {
	merged := cleanTags(global)
	for k, v := range cleanTags(local) {
		merged[k] = v
	}
	if len(merged) == 0 {
		return
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("|#")
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(merged[k])
	}
}

func cleanTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		if key := strings.TrimSpace(k); key != "" {
			out[key] = strings.TrimSpace(v)
		}
	}
	return out
}
