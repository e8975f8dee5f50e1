package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// Limiter is a fixed-window request counter keyed by client IP
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window // per-IP windows
	max     int                // requests per window
	per     time.Duration      // window size
}

type window struct {
	start time.Time // window start
	left  int       // remaining requests
}

// New creates a new IP-based limiter allowing max requests per window
func New(max int, per time.Duration) *Limiter {
	return &Limiter{windows: map[string]*window{}, max: max, per: per}
}

// Middleware enforces the rate limit before calling the next handler
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip, _, _ := net.SplitHostPort(req.RemoteAddr)

		if !l.allow(ip) {
			http.Error(w, "rate limit", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (l *Limiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	wd := l.windows[ip]
	if wd == nil || now.Sub(wd.start) > l.per {
		if len(l.windows) > 4096 {
			l.prune(now)
		}
		wd = &window{start: now, left: l.max}
		l.windows[ip] = wd
	}

	if wd.left <= 0 {
		return false
	}
	wd.left--
	return true
}

// prune drops expired windows; called under the lock
func (l *Limiter) prune(now time.Time) {
	for ip, wd := range l.windows {
		if now.Sub(wd.start) > l.per {
			delete(l.windows, ip)
		}
	}
}
