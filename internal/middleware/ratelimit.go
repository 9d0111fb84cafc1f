package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dukerupert/hestia/internal/auth"
)

// RealIP returns the client address. CF-Connecting-IP wins over the first
// X-Forwarded-For hop, which wins over RemoteAddr.
func RealIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type visitor struct {
	limiter  *rate.Limiter
	window   time.Duration
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key. A bucket holds limit tokens
// and refills one every window/limit.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
	}
}

// Allow reports whether key may make another request under limit per window.
func (rl *RateLimiter) Allow(key string, limit int, window time.Duration) bool {
	ok, _ := rl.reserve(key, limit, window)
	return ok
}

// reserve takes a token for key, or returns how long until one is available.
func (rl *RateLimiter) reserve(key string, limit int, window time.Duration) (bool, time.Duration) {
	if limit < 1 {
		limit = 1
	}
	now := time.Now()

	rl.mu.Lock()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{
			limiter: rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit),
			window:  window,
		}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	r := v.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Cleanup drops buckets idle for longer than their window. Those have
// refilled completely, so a fresh bucket is equivalent.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > v.window {
			delete(rl.visitors, key)
		}
	}
}

// Len reports how many keys are currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// ByIP keys requests on the client address.
func ByIP(r *http.Request) string {
	return "ip:" + RealIP(r)
}

// ByUser keys requests on the authenticated user, falling back to the
// client address for anonymous requests.
func ByUser(r *http.Request) string {
	if id := auth.UserID(r.Context()); id != 0 {
		return "user:" + strconv.FormatInt(id, 10)
	}
	return ByIP(r)
}

// RateLimit rejects requests with 429 once keyFunc's bucket is empty.
func RateLimit(limiter *RateLimiter, keyFunc func(*http.Request) string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, delay := limiter.reserve(keyFunc(r), limit, window)
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
