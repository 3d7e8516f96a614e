package httpx

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig defines the rate limiting parameters for an endpoint.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the window.
	RequestsPerWindow int
	// Window is the time window for rate limiting.
	Window time.Duration
	// Burst allows for temporary bursts above the rate limit.
	Burst int
}

// Common rate limit profiles for different endpoint types.
var (
	// StrictLimit for credential endpoints (brute force prevention).
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit for authenticated write operations.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20}

	// LenientLimit for reads and health endpoints.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}
)

// maxTrackedKeys bounds the per-limiter key map. When exceeded the map is
// dropped wholesale, which briefly resets limits rather than leaking memory.
const maxTrackedKeys = 10000

type limiterPool struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	cfg      RateLimitConfig
}

func newLimiterPool(cfg RateLimitConfig) *limiterPool {
	return &limiterPool{
		limiters: make(map[string]*rate.Limiter),
		cfg:      cfg,
	}
}

func (p *limiterPool) allow(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.limiters) > maxTrackedKeys {
		p.limiters = make(map[string]*rate.Limiter)
	}

	l, ok := p.limiters[key]
	if !ok {
		every := p.cfg.Window / time.Duration(p.cfg.RequestsPerWindow)
		l = rate.NewLimiter(rate.Every(every), p.cfg.Burst)
		p.limiters[key] = l
	}
	return l.Allow()
}

// RateLimitByIP limits requests per client IP. Exceeding the limit yields a
// 429 with a Retry-After hint.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	pool := newLimiterPool(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !pool.allow(host) {
				w.Header().Set("Retry-After", cfg.Window.String())
				WriteJSON(w, http.StatusTooManyRequests, map[string]string{
					"error": "rate limit exceeded",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
