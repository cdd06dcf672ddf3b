// Package ratelimit throttles API clients with per-endpoint token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// bucket is a token bucket. It starts full and refills continuously at a
// fixed rate, capped at its capacity.
type bucket struct {
	mu       sync.Mutex
	capacity float64
	rate     float64 // tokens per second
	level    float64
	updated  time.Time
}

func newBucket(capacity int, rate float64) *bucket {
	return &bucket{
		capacity: float64(capacity),
		rate:     rate,
		level:    float64(capacity),
		updated:  time.Now(),
	}
}

// advance refills the bucket up to now. Callers hold mu.
func (b *bucket) advance(now time.Time) {
	b.level = min(b.capacity, b.level+now.Sub(b.updated).Seconds()*b.rate)
	b.updated = now
}

// take consumes one token if available.
func (b *bucket) take() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance(time.Now())
	if b.level < 1 {
		return false
	}
	b.level--
	return true
}

// status reports the remaining allowance and when the bucket is full
// again, without consuming anything.
func (b *bucket) status() (remaining int, reset time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.advance(now)

	reset = now
	if b.level < b.capacity {
		secondsToFull := (b.capacity - b.level) / b.rate
		reset = now.Add(time.Duration(secondsToFull * float64(time.Second)))
	}
	return int(b.level), reset
}

// Info describes the limiter's decision for one request.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds limiter settings. Endpoints without a specific rule share
// DefaultLimit requests per DefaultWindow.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// bucketIdleCutoff is how long a client+endpoint pair may sit unused
// before its bucket is dropped by the sweep.
const bucketIdleCutoff = time.Hour

// Limiter tracks one token bucket per client+endpoint+method. A
// background sweep drops buckets idle for more than bucketIdleCutoff.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	seen    map[string]time.Time
	config  *Config
	sweep   *time.Ticker
	done    chan struct{}
}

// NewLimiter creates a limiter. A nil config enables the limiter with
// library defaults.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    1000,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
			Whitelist:       make(map[string]bool),
			Blacklist:       make(map[string]bool),
		}
	}

	l := &Limiter{
		buckets: make(map[string]*bucket),
		seen:    make(map[string]time.Time),
		config:  config,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		l.sweep = time.NewTicker(config.CleanupInterval)
		l.done = make(chan struct{})
		go l.sweepLoop()
	}

	return l
}

// Allow decides whether clientID may call method+endpoint now and
// returns the rate headers to attach either way.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{}
	}

	rule := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if rule == nil {
		rule = &EndpointConfig{
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
			Burst:  l.config.DefaultLimit,
		}
	}

	// Limit <= 0 marks an unlimited endpoint (health, metrics).
	if rule.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	key := clientID + ":" + endpoint + ":" + method
	b := l.bucketFor(key, rule)

	allowed := b.take()
	remaining, reset := b.status()

	info := Info{
		Allowed:   allowed,
		Limit:     rule.Limit,
		Remaining: remaining,
		ResetTime: reset,
	}
	if !allowed {
		if wait := time.Until(reset); wait > 0 {
			info.RetryAfter = wait
		}
	}
	return allowed, info
}

// bucketFor returns the bucket for key, creating it from the rule on
// first sight, and stamps the key's last access for the sweep.
func (l *Limiter) bucketFor(key string, rule *EndpointConfig) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seen[key] = time.Now()
	if b, ok := l.buckets[key]; ok {
		return b
	}

	capacity := rule.Burst
	if capacity <= 0 {
		capacity = rule.Limit
	}
	b := newBucket(capacity, float64(rule.Limit)/rule.Window.Seconds())
	l.buckets[key] = b
	return b
}

func (l *Limiter) sweepLoop() {
	for {
		select {
		case <-l.sweep.C:
			l.dropIdle(time.Now().Add(-bucketIdleCutoff))
		case <-l.done:
			return
		}
	}
}

func (l *Limiter) dropIdle(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, last := range l.seen {
		if last.Before(cutoff) {
			delete(l.buckets, key)
			delete(l.seen, key)
		}
	}
}

// Stop ends the background sweep.
func (l *Limiter) Stop() {
	if l.sweep != nil {
		l.sweep.Stop()
	}
	if l.done != nil {
		close(l.done)
	}
}
