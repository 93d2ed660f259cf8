package httpx

import (
	"container/list"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mhsn/forumweb/internal/ports"
)

// RateLimitConfig throttles credential submissions. Every submission spends
// one token from the client address's bucket and one from the client scope's
// bucket; either running dry rejects it.
type RateLimitConfig struct {
	Enabled   bool
	PerMinute float64
	Burst     int
	// IPPerMinute and IPBurst size the per-address bucket. Several members
	// can share an address behind NAT, so it defaults to three times the
	// scope bucket.
	IPPerMinute float64
	IPBurst     int
	// ClientIPHeader names a header set by a trusted reverse proxy
	// (X-Forwarded-For, X-Real-IP). Empty means use the connection address.
	ClientIPHeader string
	MaxClients     int
}

const tooManyAttempts = "Too many attempts. Please wait a moment and try again."

// keyedLimiters keeps one token bucket per key, dropping the least recently
// used bucket once max keys are tracked.
type keyedLimiters struct {
	mu    sync.Mutex
	limit rate.Limit
	burst int
	max   int
	order *list.List
	items map[string]*list.Element
}

type limiterEntry struct {
	key     string
	limiter *rate.Limiter
}

func newKeyedLimiters(perMinute float64, burst, maxKeys int) *keyedLimiters {
	if perMinute <= 0 {
		perMinute = 10
	}
	if maxKeys < 1 {
		maxKeys = 10000
	}
	return &keyedLimiters{
		limit: rate.Every(time.Duration(float64(time.Minute) / perMinute)),
		burst: max(burst, 1),
		max:   maxKeys,
		order: list.New(),
		items: make(map[string]*list.Element),
	}
}

func (s *keyedLimiters) allow(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[key]; ok {
		s.order.MoveToFront(el)
		return el.Value.(*limiterEntry).limiter.AllowN(now, 1)
	}

	for s.order.Len() >= s.max {
		oldest := s.order.Back()
		s.order.Remove(oldest)
		delete(s.items, oldest.Value.(*limiterEntry).key)
	}
	l := rate.NewLimiter(s.limit, s.burst)
	s.items[key] = s.order.PushFront(&limiterEntry{key: key, limiter: l})
	return l.AllowN(now, 1)
}

func (s *keyedLimiters) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// clientIP returns the submitting address. The configured proxy header wins
// when present; for a list the right-most entry is used, since that is the
// one the trusted proxy appended.
func clientIP(r *http.Request, header string) string {
	if header != "" {
		if v := r.Header.Get(header); v != "" {
			parts := strings.Split(v, ",")
			if ip := net.ParseIP(strings.TrimSpace(parts[len(parts)-1])); ip != nil {
				return ip.String()
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitAuth limits POSTs of the login and registration forms. Reads are
// never limited. A client that drops its scope cookie still shares its
// address's bucket.
func RateLimitAuth(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = 10
	}
	cfg.Burst = max(cfg.Burst, 1)
	if cfg.IPPerMinute <= 0 {
		cfg.IPPerMinute = 3 * cfg.PerMinute
	}
	if cfg.IPBurst < 1 {
		cfg.IPBurst = 3 * cfg.Burst
	}
	byIP := newKeyedLimiters(cfg.IPPerMinute, cfg.IPBurst, cfg.MaxClients)
	byScope := newKeyedLimiters(cfg.PerMinute, cfg.Burst, cfg.MaxClients)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			now := time.Now()
			if !byIP.allow(clientIP(r, cfg.ClientIPHeader), now) || !byScope.allow(ports.ScopeFrom(r.Context()), now) {
				w.Header().Set("Retry-After", "60")
				http.Error(w, tooManyAttempts, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
