package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"golang.org/x/time/rate"
)

// TooManyRequestsMessage is the 429 body message for a given Retry-After.
func TooManyRequestsMessage(retryAfter int) string {
	unit := "seconds"
	if retryAfter == 1 {
		unit = "second"
	}
	return fmt.Sprintf("Too many requests from this IP, please try again after %d %s", retryAfter, unit)
}

// RateLimitedRecorder is told about every rejected request.
type RateLimitedRecorder interface {
	RecordRateLimited()
}

// RateLimiterConfig sizes a RateLimiter.
type RateLimiterConfig struct {
	Requests        int           // requests allowed per Window
	Window          time.Duration // window over which Requests refill
	CleanupInterval time.Duration // how often idle clients are evicted
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter is a per-client-IP token bucket. Each IP may burst up to
// Requests and refills at Requests per Window.
type RateLimiter struct {
	config   RateLimiterConfig
	recorder RateLimitedRecorder
	now      func() time.Time

	mu      sync.RWMutex
	clients map[string]*clientLimiter

	stopCh    chan struct{}
	closeOnce sync.Once
}

// NewRateLimiter creates a RateLimiter and starts its cleanup goroutine,
// which runs until Close.
func NewRateLimiter(cfg RateLimiterConfig, recorder RateLimitedRecorder) *RateLimiter {
	if cfg.Requests < 1 {
		cfg.Requests = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = cfg.Window
	}

	rl := &RateLimiter{
		config:   cfg,
		recorder: recorder,
		now:      time.Now,
		clients:  make(map[string]*clientLimiter),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.stopCh) })
}

// Middleware rejects requests over the limit with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		if !rl.limiterFor(ip).AllowN(rl.now(), 1) {
			if rl.recorder != nil {
				rl.recorder.RecordRateLimited()
			}
			retryAfter := rl.retryAfterSeconds()
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests, TooManyRequestsMessage(retryAfter), nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClientCount returns the number of tracked client IPs.
func (rl *RateLimiter) ClientCount() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.clients)
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	now := rl.now()

	rl.mu.RLock()
	cl, ok := rl.clients[ip]
	rl.mu.RUnlock()
	if ok {
		rl.mu.Lock()
		cl.lastAccess = now
		rl.mu.Unlock()
		return cl.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if cl, ok := rl.clients[ip]; ok {
		cl.lastAccess = now
		return cl.limiter
	}

	every := rl.config.Window / time.Duration(rl.config.Requests)
	cl = &clientLimiter{
		limiter:    rate.NewLimiter(rate.Every(every), rl.config.Requests),
		lastAccess: now,
	}
	rl.clients[ip] = cl
	return cl.limiter
}

// retryAfterSeconds is the time for one token to refill, rounded up.
func (rl *RateLimiter) retryAfterSeconds() int {
	per := rl.config.Window.Seconds() / float64(rl.config.Requests)
	return int(math.Max(1, math.Ceil(per)))
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup evicts clients idle for longer than a full window, whose buckets
// have therefore refilled completely.
func (rl *RateLimiter) cleanup() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, cl := range rl.clients {
		if now.Sub(cl.lastAccess) > rl.config.Window {
			delete(rl.clients, ip)
		}
	}
}

// clientIP is the host part of RemoteAddr, which chi's RealIP middleware
// has already rewritten from forwarding headers when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
