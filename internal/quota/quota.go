package quota

import (
	"sync"
	"time"
)

// WindowKind selects the reset boundary for a provider's call budget. Some
// providers cap daily, others are unlimited monthly but burst-limited, so the
// window is per-provider configuration.
type WindowKind string

const (
	WindowDaily   WindowKind = "daily"
	WindowMonthly WindowKind = "monthly"
)

// Limit is the static budget for one provider. Limit <= 0 means no windowed
// cap; MinInterval still applies.
type Limit struct {
	Provider    string
	Limit       int
	Window      WindowKind
	MinInterval time.Duration
}

type counter struct {
	calls        int
	windowStart  time.Time
	nextEligible time.Time
}

// Usage is a read-only snapshot for the status endpoint.
type Usage struct {
	Provider  string     `json:"provider"`
	Calls     int        `json:"calls"`
	Limit     int        `json:"limit"`
	Remaining int        `json:"remaining"`
	Window    WindowKind `json:"window"`
}

// Tracker counts calls per provider within a rolling window and enforces a
// minimum interval between calls. Allow is the only mutating path and is
// atomic under one mutex, so counters never exceed their limit.
type Tracker struct {
	mu       sync.Mutex
	limits   map[string]Limit
	counters map[string]*counter
	now      func() time.Time
}

func NewTracker(limits []Limit) *Tracker {
	t := &Tracker{
		limits:   make(map[string]Limit, len(limits)),
		counters: make(map[string]*counter, len(limits)),
		now:      time.Now,
	}
	for _, l := range limits {
		if l.Window == "" {
			l.Window = WindowDaily
		}
		t.limits[l.Provider] = l
		t.counters[l.Provider] = &counter{windowStart: t.now()}
	}
	return t
}

// NewTrackerWithClock lets tests drive window resets and interval gating.
func NewTrackerWithClock(limits []Limit, now func() time.Time) *Tracker {
	t := NewTracker(limits)
	t.now = now
	for _, c := range t.counters {
		c.windowStart = now()
	}
	return t
}

// Allow reports whether a call to provider is permitted right now and, if so,
// counts it and advances the provider's next-eligible watermark. A denied
// call has no side effect. Unknown providers are always allowed.
func (t *Tracker) Allow(provider string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	limit, ok := t.limits[provider]
	if !ok {
		return true
	}

	now := t.now()
	c := t.counters[provider]
	t.resetIfCrossed(c, limit.Window, now)

	if limit.Limit > 0 && c.calls >= limit.Limit {
		return false
	}

	c.calls++
	c.nextEligible = now.Add(limit.MinInterval)
	return true
}

// Eligible reports whether the provider's minimum call interval has elapsed.
// It never consumes quota; the orchestrator checks it before Allow so a
// burst-limited provider is skipped instead of waited on.
func (t *Tracker) Eligible(provider string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.counters[provider]
	if !ok {
		return true
	}
	return !t.now().Before(c.nextEligible)
}

// Remaining returns how many calls are left in the provider's current window,
// or -1 when the provider has no windowed cap.
func (t *Tracker) Remaining(provider string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	limit, ok := t.limits[provider]
	if !ok || limit.Limit <= 0 {
		return -1
	}

	c := t.counters[provider]
	t.resetIfCrossed(c, limit.Window, t.now())

	if r := limit.Limit - c.calls; r > 0 {
		return r
	}
	return 0
}

// Usage snapshots every tracked provider for diagnostics.
func (t *Tracker) Usage() []Usage {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	out := make([]Usage, 0, len(t.limits))
	for name, limit := range t.limits {
		c := t.counters[name]
		t.resetIfCrossed(c, limit.Window, now)

		remaining := -1
		if limit.Limit > 0 {
			remaining = limit.Limit - c.calls
			if remaining < 0 {
				remaining = 0
			}
		}
		out = append(out, Usage{
			Provider:  name,
			Calls:     c.calls,
			Limit:     limit.Limit,
			Remaining: remaining,
			Window:    limit.Window,
		})
	}
	return out
}

// resetIfCrossed lazily zeroes the counter when now falls in a newer window
// than windowStart. Callers hold t.mu.
func (t *Tracker) resetIfCrossed(c *counter, window WindowKind, now time.Time) {
	if sameWindow(c.windowStart, now, window) {
		return
	}
	c.calls = 0
	c.windowStart = now
}

func sameWindow(a, b time.Time, window WindowKind) bool {
	if window == WindowMonthly {
		return a.Year() == b.Year() && a.Month() == b.Month()
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
