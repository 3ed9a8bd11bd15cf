// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Probe is the outcome of a single consumption attempt.
type Probe struct {
	// Admitted reports whether the tokens were removed.
	Admitted bool

	// Remaining is the whole number of tokens left after the attempt.
	Remaining int64

	// NanosToNextRefill is the minimum wait until the same cost would be
	// admitted. Zero when admitted.
	NanosToNextRefill int64
}

// RetryAfterSeconds rounds the refill wait up to whole seconds.
// A denied probe never advises less than one second.
func (probe Probe) RetryAfterSeconds() int64 {
	if probe.Admitted {
		return 0
	}
	seconds := probe.NanosToNextRefill / int64(time.Second)
	if probe.NanosToNextRefill%int64(time.Second) != 0 {
		seconds++
	}
	if seconds < 1 {
		return 1
	}
	return seconds
}

// Bucket is a token bucket for one actor key.
//
// The bucket guards its own counters: concurrent consumers on the same key are
// serialized, so the count never goes negative and every decrement is seen.
type Bucket struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	capacity int
	clock    Clock
	lastUsed time.Time
	evicted  bool
}

func newBucket(capacity int, period time.Duration, clock Clock) *Bucket {
	refill := rate.Limit(float64(capacity) / period.Seconds())
	return &Bucket{
		limiter:  rate.NewLimiter(refill, capacity),
		capacity: capacity,
		clock:    clock,
		lastUsed: clock.Now(),
	}
}

// Capacity returns the maximum number of tokens the bucket holds.
func (bucket *Bucket) Capacity() int {
	return bucket.capacity
}

// TryConsume attempts to remove cost tokens, refilling lazily from the time
// elapsed since the previous call.
func (bucket *Bucket) TryConsume(cost int) Probe {
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	return bucket.consumeLocked(cost)
}

// consume is TryConsume for the owning [Limiter]. It reports false without
// touching the counters once the bucket has been evicted, so the caller
// resolves the key again instead of drawing from an orphan.
func (bucket *Bucket) consume(cost int) (Probe, bool) {
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	if bucket.evicted {
		return Probe{}, false
	}
	return bucket.consumeLocked(cost), true
}

func (bucket *Bucket) consumeLocked(cost int) Probe {
	now := bucket.clock.Now()
	bucket.lastUsed = now

	if bucket.limiter.AllowN(now, cost) {
		return Probe{
			Admitted:  true,
			Remaining: wholeTokens(bucket.limiter.TokensAt(now)),
		}
	}

	available := bucket.limiter.TokensAt(now)
	probe := Probe{Remaining: wholeTokens(available)}

	// A cost above capacity can never be satisfied.
	if cost > bucket.capacity {
		probe.NanosToNextRefill = math.MaxInt64
		return probe
	}

	deficit := float64(cost) - available
	wait := time.Duration(deficit / float64(bucket.limiter.Limit()) * float64(time.Second))
	if wait <= 0 {
		wait = time.Nanosecond
	}
	probe.NanosToNextRefill = wait.Nanoseconds()

	return probe
}

// evictIfIdle marks the bucket evicted when it has been unused since cutoff
// and is back to full capacity, i.e. dropping it is indistinguishable from
// keeping it.
func (bucket *Bucket) evictIfIdle(cutoff time.Time) bool {
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	if bucket.lastUsed.After(cutoff) {
		return false
	}
	if bucket.limiter.TokensAt(bucket.clock.Now()) < float64(bucket.capacity) {
		return false
	}

	bucket.evicted = true
	return true
}

func wholeTokens(tokens float64) int64 {
	if tokens <= 0 {
		return 0
	}
	return int64(math.Floor(tokens))
}
