package auth

import (
	"sync"
	"time"
)

// sweepThreshold bounds the entry map; expired entries are dropped once it
// is exceeded.
const sweepThreshold = 1024

// Throttle counts failures per key and refuses a key for a lockout period
// once maxFailures occur within window. Safe for concurrent use.
type Throttle struct {
	maxFailures int
	window      time.Duration
	lockout     time.Duration
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*failures
}

type failures struct {
	count        int
	first        time.Time
	blockedUntil time.Time
}

// NewThrottle creates a Throttle.
func NewThrottle(maxFailures int, window, lockout time.Duration) *Throttle {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &Throttle{
		maxFailures: maxFailures,
		window:      window,
		lockout:     lockout,
		now:         time.Now,
		entries:     make(map[string]*failures),
	}
}

// Allow reports whether key may try again. When it may not, the returned
// duration is the time left on the lockout.
func (t *Throttle) Allow(key string) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, ok := t.entries[key]
	if !ok {
		return 0, true
	}
	if left := f.blockedUntil.Sub(t.now()); left > 0 {
		return left, false
	}
	return 0, true
}

// Fail records a failure for key. It returns true when this failure starts
// a lockout.
func (t *Throttle) Fail(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if len(t.entries) > sweepThreshold {
		t.sweep(now)
	}

	f, ok := t.entries[key]
	if !ok || now.Sub(f.first) > t.window {
		f = &failures{first: now}
		t.entries[key] = f
	}

	f.count++
	if f.count >= t.maxFailures {
		f.blockedUntil = now.Add(t.lockout)
		f.count = 0
		f.first = now
		return true
	}
	return false
}

// Reset forgets key's failures after a success.
func (t *Throttle) Reset(key string) {
	t.mu.Lock()
	delete(t.entries, key)
	t.mu.Unlock()
}

func (t *Throttle) sweep(now time.Time) {
	for key, f := range t.entries {
		if now.After(f.blockedUntil) && now.Sub(f.first) > t.window {
			delete(t.entries, key)
		}
	}
}
