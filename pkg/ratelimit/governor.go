package ratelimit

import (
	"math/rand"
	"sync"
	"time"

	"scanagram/pkg/clock"
)

const (
	// maxHistory bounds the request history ring
	maxHistory = 200

	// rollingWindow is the quota accounting window
	rollingWindow = time.Hour

	// burstWindow is the interval in which rapid-fire requests count toward a burst
	burstWindow = 10 * time.Second

	// spacingJitter is the fraction of randomness applied to spacing waits
	spacingJitter = 0.3

	// humanizeMin and humanizeMax bound the randomized humanization delay
	humanizeMin = 500 * time.Millisecond
	humanizeMax = 2 * time.Second
)

// WaitReason identifies why the governor is suspending a caller
type WaitReason string

const (
	WaitCooldown WaitReason = "cooldown"
	WaitQuota    WaitReason = "quota"
	WaitSpacing  WaitReason = "spacing"
	WaitBurst    WaitReason = "burst"
	WaitHumanize WaitReason = "humanize"
)

// Config holds governor configuration. All fields are read-only after
// the governor is constructed.
type Config struct {
	// RequestsPerHour is the rolling-window quota
	RequestsPerHour int
	// MinDelay is the minimum spacing between consecutive requests
	MinDelay time.Duration
	// BurstLimit is the number of requests within the burst window that triggers a cooldown
	BurstLimit int
	// Cooldown is how long admission is blocked after a burst
	Cooldown time.Duration
	// Humanize adds a random delay to every admission when set
	Humanize bool
	// OnWait is called before each suspension with the reason and duration
	OnWait func(reason WaitReason, d time.Duration)
}

// DefaultConfig returns a governor configuration with conservative defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerHour: 180,
		MinDelay:        2 * time.Second,
		BurstLimit:      10,
		Cooldown:        60 * time.Second,
		Humanize:        true,
	}
}

// Stats is a read-only snapshot of governor state
type Stats struct {
	TotalRequests      int     `json:"total_requests"`
	RequestsInLastHour int     `json:"last_hour"`
	Limit              int     `json:"limit"`
	UtilizationPercent float64 `json:"utilization_percent"`
	IsCoolingDown      bool    `json:"is_cooling_down"`
}

// Governor gates outbound requests against a rolling hourly quota, enforces
// minimum spacing, and cools down after self-inflicted bursts. Admit must be
// called before every request and Record after every successful one.
//
// Admit only ever delays; it has no failure path. Callers sharing one governor
// are serialized on its internal lock for state transitions, but waits happen
// outside the lock.
type Governor struct {
	cfg   Config
	clock clock.Clock

	mu               sync.Mutex
	history          []time.Time
	lastRequest      time.Time
	burstWindowStart time.Time
	burstCount       int
	cooldownUntil    time.Time
	totalRequests    int
}

// NewGovernor creates a governor with the given configuration. A nil clock
// defaults to the system clock. Non-positive config fields fall back to the
// defaults.
func NewGovernor(cfg Config, clk clock.Clock) *Governor {
	defaults := DefaultConfig()
	if cfg.RequestsPerHour <= 0 {
		cfg.RequestsPerHour = defaults.RequestsPerHour
	}
	if cfg.MinDelay <= 0 {
		cfg.MinDelay = defaults.MinDelay
	}
	if cfg.BurstLimit <= 0 {
		cfg.BurstLimit = defaults.BurstLimit
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaults.Cooldown
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &Governor{
		cfg:     cfg,
		clock:   clk,
		history: make([]time.Time, 0, maxHistory),
	}
}

// Admit blocks until the next request may be issued. The checks run in a
// fixed order: cooldown, rolling-window quota, minimum spacing, burst
// detection, humanization delay. Each check reads a fresh "now" so state
// changed by an earlier wait is observed.
func (g *Governor) Admit() {
	g.awaitCooldown()
	g.awaitQuota()
	g.awaitSpacing()
	g.trackBurst()
	g.humanize()
}

// Record registers a completed request. Call it once per successfully
// admitted and performed request.
func (g *Governor) Record() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	if len(g.history) >= maxHistory {
		copy(g.history, g.history[1:])
		g.history = g.history[:len(g.history)-1]
	}
	g.history = append(g.history, now)
	g.lastRequest = now
	g.totalRequests++
}

// Stats returns a snapshot of consumption relative to now. It does not
// mutate governor state.
func (g *Governor) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	recent, _ := g.recentLocked(now)

	return Stats{
		TotalRequests:      g.totalRequests,
		RequestsInLastHour: recent,
		Limit:              g.cfg.RequestsPerHour,
		UtilizationPercent: float64(recent) / float64(g.cfg.RequestsPerHour) * 100,
		IsCoolingDown:      !g.cooldownUntil.IsZero() && now.Before(g.cooldownUntil),
	}
}

// recentLocked counts history entries inside the rolling window and returns
// the oldest of them. Caller must hold g.mu.
func (g *Governor) recentLocked(now time.Time) (int, time.Time) {
	cutoff := now.Add(-rollingWindow)

	// History is appended in call order, so the first entry past the cutoff
	// is the oldest recent one.
	for i, ts := range g.history {
		if ts.After(cutoff) {
			return len(g.history) - i, ts
		}
	}
	return 0, time.Time{}
}

// awaitCooldown waits out an active cooldown, then clears it and resets the
// burst counter. An expired cooldown is cleared without waiting.
func (g *Governor) awaitCooldown() {
	g.mu.Lock()
	if g.cooldownUntil.IsZero() {
		g.mu.Unlock()
		return
	}

	now := g.clock.Now()
	var wait time.Duration
	if now.Before(g.cooldownUntil) {
		wait = g.cooldownUntil.Sub(now)
	}
	g.mu.Unlock()

	if wait > 0 {
		g.wait(WaitCooldown, wait)
	}

	g.mu.Lock()
	g.cooldownUntil = time.Time{}
	g.burstCount = 0
	g.mu.Unlock()
}

// awaitQuota blocks until the trailing hour holds fewer requests than the
// quota. Waiting until the oldest recent entry leaves the window guarantees
// no hour-long sliding window ever exceeds the limit.
func (g *Governor) awaitQuota() {
	g.mu.Lock()
	now := g.clock.Now()
	recent, oldest := g.recentLocked(now)
	g.mu.Unlock()

	if recent < g.cfg.RequestsPerHour {
		return
	}
	g.wait(WaitQuota, oldest.Add(rollingWindow).Sub(now))
}

// awaitSpacing enforces the minimum delay since the previous request, with
// jitter so the spacing is not a fixed fingerprint.
func (g *Governor) awaitSpacing() {
	g.mu.Lock()
	now := g.clock.Now()
	last := g.lastRequest
	g.mu.Unlock()

	if last.IsZero() {
		return
	}
	elapsed := now.Sub(last)
	if elapsed >= g.cfg.MinDelay {
		return
	}

	wait := g.cfg.MinDelay - elapsed
	jitter := (rand.Float64()*2 - 1) * spacingJitter
	wait = time.Duration(float64(wait) * (1 + jitter))
	g.wait(WaitSpacing, wait)
}

// trackBurst counts admissions inside the burst window and imposes a
// cooldown when the limit is hit. A window older than burstWindow restarts
// counting, so slow callers never accumulate burst pressure.
func (g *Governor) trackBurst() {
	g.mu.Lock()
	now := g.clock.Now()

	if g.burstWindowStart.IsZero() || now.Sub(g.burstWindowStart) >= burstWindow {
		g.burstWindowStart = now
		g.burstCount = 1
		g.mu.Unlock()
		return
	}

	g.burstCount++
	if g.burstCount < g.cfg.BurstLimit {
		g.mu.Unlock()
		return
	}

	// Burst triggered: cooldownUntil is set before sleeping so Stats reports
	// the cooldown while the wait is in progress.
	g.cooldownUntil = now.Add(g.cfg.Cooldown)
	g.burstCount = 0
	g.mu.Unlock()

	g.wait(WaitBurst, g.cfg.Cooldown)
}

// humanize adds a uniform random delay so request timing looks less scripted
func (g *Governor) humanize() {
	if !g.cfg.Humanize {
		return
	}
	d := humanizeMin + time.Duration(rand.Float64()*float64(humanizeMax-humanizeMin))
	g.wait(WaitHumanize, d)
}

// wait suspends the caller. Negative durations are clamped to zero rather
// than surfaced.
func (g *Governor) wait(reason WaitReason, d time.Duration) {
	if d <= 0 {
		return
	}
	if g.cfg.OnWait != nil {
		g.cfg.OnWait(reason, d)
	}
	g.clock.Sleep(d)
}
