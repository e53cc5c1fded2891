package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"upiqr/internal/pkg/errors"
	"upiqr/internal/platform/config"
)

const (
	LimitRedirect = "redirect"
	LimitAPIRead  = "api_read"
	LimitAPIWrite = "api_write"
	LimitRender   = "render"

	defaultLimit = 100
	idleAfter    = 10 * time.Minute
)

type RateLimiter struct {
	store  *sync.Map // map[string]*Bucket
	limits map[string]int
	now    func() time.Time
}

type Bucket struct {
	tokens     int
	lastRefill time.Time
	lastAccess time.Time
	mu         sync.Mutex
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		store: &sync.Map{},
		limits: map[string]int{
			LimitRedirect: cfg.RedirectPerMinute,
			LimitAPIRead:  cfg.APIReadPerMinute,
			LimitAPIWrite: cfg.APIWritePerMinute,
			LimitRender:   cfg.RenderPerMinute,
		},
		now: time.Now,
	}
}

// Cleanup drops buckets idle for ten minutes until stop is closed.
func (rl *RateLimiter) Cleanup(stop <-chan struct{}) {
	ticker := time.NewTicker(idleAfter)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	now := rl.now()
	rl.store.Range(func(key, value interface{}) bool {
		bucket := value.(*Bucket)
		bucket.mu.Lock()
		if now.Sub(bucket.lastAccess) > idleAfter {
			rl.store.Delete(key)
		}
		bucket.mu.Unlock()
		return true
	})
}

func (rl *RateLimiter) Limit(limitType string) int {
	if limit, ok := rl.limits[limitType]; ok && limit > 0 {
		return limit
	}
	return defaultLimit
}

// Allow takes one token from key's bucket; buckets refill at limit per minute.
func (rl *RateLimiter) Allow(key string, limit int) bool {
	now := rl.now()

	val, _ := rl.store.LoadOrStore(key, &Bucket{
		tokens:     limit,
		lastRefill: now,
		lastAccess: now,
	})

	bucket := val.(*Bucket)
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.lastAccess = now

	elapsed := now.Sub(bucket.lastRefill)
	refillRate := float64(limit) / 60.0
	refillTokens := int(elapsed.Seconds() * refillRate)

	if refillTokens > 0 {
		bucket.tokens = min(bucket.tokens+refillTokens, limit)
		bucket.lastRefill = now
	}

	if bucket.tokens > 0 {
		bucket.tokens--
		return true
	}

	return false
}

func (rl *RateLimiter) Middleware(limitType string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("%s:%s", ClientIP(r), limitType)
			limit := rl.Limit(limitType)

			if !rl.Allow(key, limit) {
				w.Header().Set("Retry-After", strconv.Itoa(int(60/float64(limit))+1))
				errors.Write(w, errors.New(errors.CodeRateLimited, "Rate limit exceeded"))
				return
			}

			next(w, r)
		}
	}
}

// ClientIP prefers the first X-Forwarded-For hop, then RemoteAddr without port.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
