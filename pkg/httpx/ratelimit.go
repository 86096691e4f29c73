package httpx

import (
	"math"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig parameterises a token-bucket limiter.
type RateLimitConfig struct {
	// RequestsPerWindow is the sustained number of requests per Window.
	RequestsPerWindow int
	Window            time.Duration
	// Burst is the bucket size.
	Burst int
}

// StrictLimit suits credential endpoints: 5 attempts a minute, all available
// at once.
var StrictLimit = RateLimitConfig{
	RequestsPerWindow: 5,
	Window:            time.Minute,
	Burst:             5,
}

// ParseRateLimitFromEnv overlays RATELIMIT_{prefix}_REQUESTS,
// RATELIMIT_{prefix}_WINDOW_SEC and RATELIMIT_{prefix}_BURST onto def. Invalid
// or non-positive values are ignored.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	cfg := def
	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := positiveEnvInt("RATELIMIT_" + prefix + "_BURST"); ok {
		cfg.Burst = n
	}
	return cfg
}

func positiveEnvInt(key string) (int, bool) {
	n, err := strconv.Atoi(os.Getenv(key))
	return n, err == nil && n > 0
}

type bucketLimiter struct {
	limiters sync.Map // string -> *rate.Limiter
	limit    rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
}

func (bl *bucketLimiter) get(key string) *rate.Limiter {
	if l, ok := bl.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}
	l, _ := bl.limiters.LoadOrStore(key, rate.NewLimiter(bl.limit, bl.burst))
	bl.maybeCleanup()
	return l.(*rate.Limiter)
}

// maybeCleanup drops full buckets at most every five minutes; a full bucket is
// indistinguishable from a fresh one.
func (bl *bucketLimiter) maybeCleanup() {
	bl.mu.Lock()
	defer bl.mu.Unlock()

	if time.Since(bl.lastCleanup) < 5*time.Minute {
		return
	}
	bl.lastCleanup = time.Now()

	bl.limiters.Range(func(k, v any) bool {
		if v.(*rate.Limiter).Tokens() >= float64(bl.burst) {
			bl.limiters.Delete(k)
		}
		return true
	})
}

// RateLimitMiddleware applies a token bucket per key. Requests whose key is
// empty pass through.
func RateLimitMiddleware(cfg RateLimitConfig, key KeyExtractor) Middleware {
	bl := &bucketLimiter{
		limit:       rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst:       cfg.Burst,
		lastCleanup: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: empty key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			l := bl.get(k)
			if !l.Allow() {
				res := l.Reserve()
				delay := res.Delay()
				res.Cancel()

				slogx.FromContext(r.Context()).Warn("rate limit exceeded",
					"limiter", "token_bucket",
					"key", k,
					"retry_after", delay,
				)
				writeRateLimited(w, delay)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIPAndFormField keys a token bucket on peer address plus a form
// field, typically the username on a login form.
func RateLimitByIPAndFormField(cfg RateLimitConfig, ip KeyExtractor, field string) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":", ip, FormFieldKeyExtractor(field)))
}

func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	secs := max(int(math.Ceil(retryAfter.Seconds())), 1)
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	WriteError(w, http.StatusTooManyRequests, "rate_limited", "Rate limit exceeded. Please try again later.")
}
