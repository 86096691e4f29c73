package httpx

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/ratelimit"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
)

// Admitter decides whether a keyed request may proceed at now.
type Admitter interface {
	Admit(key string, now time.Time) ratelimit.Decision
}

// SlidingWindowMiddleware admits every request through l before it reaches
// next and reports the outcome in X-RateLimit-Limit and X-RateLimit-Remaining.
// now is the limiter clock; nil means time.Now.
func SlidingWindowMiddleware(l Admitter, key KeyExtractor, now func() time.Time) Middleware {
	if now == nil {
		now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			d := l.Admit(k, now())

			w.Header().Set(HeaderRateLimitLimit, strconv.Itoa(d.Limit))
			w.Header().Set(HeaderRateLimitRemaining, strconv.Itoa(d.Remaining))

			if !d.Allowed {
				slogx.FromContext(r.Context()).Warn("rate limit exceeded",
					"limiter", "sliding_window",
					"key", k,
					"retry_after", d.RetryAfter,
				)
				writeRateLimited(w, d.RetryAfter)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
