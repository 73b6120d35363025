package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the per-client rate limiter.
type RateLimitConfig struct {
	// Max is the number of requests allowed per window.
	Max int
	// Window is the length of the sliding window.
	Window time.Duration
	// KeyFunc derives the limiter key from a request. Defaults to the
	// client IP (X-Forwarded-For, then X-Real-IP, then RemoteAddr).
	KeyFunc func(*http.Request) string
}

// RateLimit enforces a sliding-window limit per client key. Rejected
// requests get 429 with a JSON error body; every response carries
// X-RateLimit-Limit, X-RateLimit-Remaining, and X-RateLimit-Reset headers.
//
// Stale client entries are never evicted. Use RateLimitWithCleanup for
// long-running servers.
func RateLimit(cfg RateLimitConfig) Middleware {
	return newLimiter(cfg).middleware()
}

// RateLimitWithCleanup is RateLimit plus a background goroutine that evicts
// idle client entries. The goroutine stops when ctx is cancelled.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	l := newLimiter(cfg)
	go l.evictLoop(ctx)
	return l.middleware()
}

// limiter implements the sliding window counter algorithm: requests in the
// previous window are weighted by how much of that window still overlaps the
// sliding window ending now. This bounds bursts at window boundaries without
// storing per-request timestamps.
type limiter struct {
	max    float64
	window time.Duration
	key    func(*http.Request) string

	mu      sync.Mutex
	clients map[string]*clientWindow
}

type clientWindow struct {
	start time.Time // start of the current fixed window
	count float64   // requests seen in the current window
	prev  float64   // requests seen in the window before it
}

func newLimiter(cfg RateLimitConfig) *limiter {
	keyFn := cfg.KeyFunc
	if keyFn == nil {
		keyFn = clientIP
	}
	return &limiter{
		max:     float64(cfg.Max),
		window:  cfg.Window,
		key:     keyFn,
		clients: make(map[string]*clientWindow),
	}
}

// take records a request for key if it fits under the limit. It reports the
// remaining budget and when the current window resets.
func (l *limiter) take(key string, now time.Time) (remaining int, resetAt time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cw, found := l.clients[key]
	if !found {
		cw = &clientWindow{start: now}
		l.clients[key] = cw
	}

	if elapsed := now.Sub(cw.start); elapsed >= l.window {
		cw.prev = cw.count
		if elapsed >= 2*l.window {
			cw.prev = 0
		}
		cw.count = 0
		cw.start = now.Truncate(l.window)
	}

	weight := 1 - now.Sub(cw.start).Seconds()/l.window.Seconds()
	if weight < 0 {
		weight = 0
	}
	used := cw.prev*weight + cw.count
	resetAt = cw.start.Add(l.window)

	if used >= l.max {
		return 0, resetAt, false
	}

	cw.count++
	remaining = int(l.max - used - 1)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, resetAt, true
}

// evictLoop drops clients that have been idle for two full windows.
func (l *limiter) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(2 * l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for key, cw := range l.clients {
				if now.Sub(cw.start) >= 2*l.window {
					delete(l.clients, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

func (l *limiter) middleware() Middleware {
	limitHeader := strconv.Itoa(int(l.max))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, resetAt, ok := l.take(l.key(r), time.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", limitHeader)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !ok {
				retryAfter := math.Ceil(time.Until(resetAt).Seconds())
				if retryAfter < 0 {
					retryAfter = 0
				}
				h.Set("Retry-After", strconv.Itoa(int(retryAfter)))
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the originating client address from proxy headers,
// falling back to the socket peer.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Comma-separated chain; the first entry is the client.
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
