package ratelimit

import (
	"sync"
	"time"
)

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter is a per-key token bucket.
type Limiter struct {
	mu           sync.Mutex
	m            map[string]*bucket
	capacity     float64
	refillPerSec float64
	sweepEvery   time.Duration // 0 disables eviction
	lastSweep    time.Time
	now          func() time.Time
}

func New(capacity, refillPerSec float64) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	l := &Limiter{
		m:            make(map[string]*bucket),
		capacity:     capacity,
		refillPerSec: refillPerSec,
		now:          time.Now,
	}
	if refillPerSec > 0 {
		l.sweepEvery = time.Duration(capacity / refillPerSec * float64(time.Second))
		if l.sweepEvery < time.Second {
			l.sweepEvery = time.Second
		}
	}
	return l
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sweepEvery > 0 && now.Sub(l.lastSweep) >= l.sweepEvery {
		l.sweep(now)
	}

	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: l.capacity, last: now}
		l.m[key] = b
	}
	b.tokens = l.level(b, now)
	b.last = now
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func (l *Limiter) level(b *bucket, now time.Time) float64 {
	t := b.tokens
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		t += elapsed * l.refillPerSec
	}
	if t > l.capacity {
		t = l.capacity
	}
	return t
}

// sweep drops buckets that have refilled to capacity. A new bucket starts
// full, so dropping them changes no decision.
func (l *Limiter) sweep(now time.Time) {
	for k, b := range l.m {
		if l.level(b, now) >= l.capacity {
			delete(l.m, k)
		}
	}
	l.lastSweep = now
}
