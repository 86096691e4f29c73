// Package ratelimit implements a per-client sliding-window request counter.
//
// Each client key owns an ordered log of admission times. On every Admit the
// log is pruned to the trailing window; the request is admitted only while the
// pruned log holds fewer than Limit entries. Rejected requests are not
// recorded.
package ratelimit

import (
	"sync"
	"time"
)

// DefaultWindow is the trailing interval requests are counted over.
const DefaultWindow = time.Minute

// Decision is the outcome of a single Admit call.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int

	// RetryAfter is how long until the oldest entry leaves the window. It is
	// only set on rejections.
	RetryAfter time.Duration
}

// SlidingWindow tracks an independent window per client key. The zero value is
// not usable; construct with NewSlidingWindow.
type SlidingWindow struct {
	limit   int
	window  time.Duration
	clients sync.Map // string -> *clientWindow
}

type clientWindow struct {
	mu      sync.Mutex
	entries []time.Time
	dead    bool
}

// NewSlidingWindow returns a limiter admitting at most limit requests per key
// within any trailing window. A non-positive window uses DefaultWindow.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	if window <= 0 {
		window = DefaultWindow
	}
	if limit < 0 {
		limit = 0
	}
	return &SlidingWindow{limit: limit, window: window}
}

func (s *SlidingWindow) Limit() int { return s.limit }

func (s *SlidingWindow) Window() time.Duration { return s.window }

// Admit prunes the key's window relative to now, then either records now and
// allows the request or rejects it without recording. Prune, check and append
// happen under the key's lock.
func (s *SlidingWindow) Admit(key string, now time.Time) Decision {
	for {
		v, _ := s.clients.LoadOrStore(key, &clientWindow{})
		cw := v.(*clientWindow)

		cw.mu.Lock()
		if cw.dead {
			// Swept between lookup and lock; retry against the fresh window.
			cw.mu.Unlock()
			continue
		}

		cw.prune(now, s.window)

		if len(cw.entries) >= s.limit {
			d := Decision{Limit: s.limit}
			if len(cw.entries) > 0 {
				d.RetryAfter = cw.entries[0].Add(s.window).Sub(now)
			}
			cw.mu.Unlock()
			return d
		}

		cw.entries = append(cw.entries, now)
		d := Decision{Allowed: true, Limit: s.limit, Remaining: s.limit - len(cw.entries)}
		cw.mu.Unlock()
		return d
	}
}

// Sweep removes the windows of keys whose every entry has aged out, returning
// the number removed. Admission outcomes are unaffected: a swept key starts
// from the same empty window its next Admit would have pruned down to.
func (s *SlidingWindow) Sweep(now time.Time) int {
	removed := 0
	s.clients.Range(func(k, v any) bool {
		cw := v.(*clientWindow)

		cw.mu.Lock()
		cw.prune(now, s.window)
		if len(cw.entries) == 0 && !cw.dead {
			cw.dead = true
			s.clients.CompareAndDelete(k, cw)
			removed++
		}
		cw.mu.Unlock()
		return true
	})
	return removed
}

// Len reports the number of tracked keys.
func (s *SlidingWindow) Len() int {
	n := 0
	s.clients.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// prune drops the prefix of entries at least one window older than now.
func (cw *clientWindow) prune(now time.Time, window time.Duration) {
	i := 0
	for i < len(cw.entries) && now.Sub(cw.entries[i]) >= window {
		i++
	}
	if i == 0 {
		return
	}
	n := copy(cw.entries, cw.entries[i:])
	clear(cw.entries[n:])
	cw.entries = cw.entries[:n]
}
