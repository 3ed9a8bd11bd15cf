// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ratelimit bounds the request rate of each logical actor with a token
bucket.

A single [Limiter] is constructed at process start and handed to the HTTP gate
explicitly; there is no package-level state.

Semantics:

  - One bucket per actor key, created lazily and exactly once.
  - Capacity tokens per refill period, refilled continuously from elapsed time
    (golang.org/x/time/rate driven by an injectable [Clock]).
  - Consumption is O(1) and never blocks.
  - Optional idle eviction only drops buckets that are full again; a bucket
    evicted under a concurrent consumer is never drawn from.
*/
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// # Clock

// Clock supplies the current time to buckets.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to [Clock].
type ClockFunc func() time.Time

// Now implements [Clock].
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// # Limiter

// Config describes the bucket every key receives.
type Config struct {
	// Capacity is the number of requests admitted per Period.
	Capacity int

	// Period is the refill window.
	Period time.Duration

	// IdleTTL enables eviction of buckets unused for at least this long.
	// Zero keeps every bucket for the process lifetime.
	IdleTTL time.Duration
}

// Limiter owns the key to bucket map.
type Limiter struct {
	config  Config
	clock   Clock
	mu      sync.RWMutex
	buckets map[string]*Bucket
}

// New constructs a Limiter. A nil clock selects [SystemClock].
func New(config Config, clock Clock) *Limiter {
	if clock == nil {
		clock = SystemClock
	}
	return &Limiter{
		config:  config,
		clock:   clock,
		buckets: make(map[string]*Bucket),
	}
}

// Capacity returns the configured tokens per period.
func (limiter *Limiter) Capacity() int {
	return limiter.config.Capacity
}

// ResolveBucket returns the bucket for key, creating it on first use.
//
// Concurrent first-time callers for the same key all receive the same bucket.
func (limiter *Limiter) ResolveBucket(key string) *Bucket {
	limiter.mu.RLock()
	bucket, found := limiter.buckets[key]
	limiter.mu.RUnlock()

	if found {
		return bucket
	}

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	// Double check: another goroutine may have won the race.
	if bucket, found := limiter.buckets[key]; found {
		return bucket
	}

	bucket = newBucket(limiter.config.Capacity, limiter.config.Period, limiter.clock)
	limiter.buckets[key] = bucket

	return bucket
}

// Consume resolves the bucket for key and removes one token from it.
//
// A bucket evicted between resolution and consumption is skipped and the key
// resolved again, so a sweep never hands out tokens from a dropped bucket.
func (limiter *Limiter) Consume(key string) Probe {
	for {
		if probe, ok := limiter.ResolveBucket(key).consume(1); ok {
			return probe
		}
	}
}

// Len returns the number of live buckets.
func (limiter *Limiter) Len() int {
	limiter.mu.RLock()
	defer limiter.mu.RUnlock()
	return len(limiter.buckets)
}

// # Idle Eviction

// Sweep drops buckets that have been idle for IdleTTL and have refilled
// completely. It returns the number of evicted buckets.
func (limiter *Limiter) Sweep() int {
	if limiter.config.IdleTTL <= 0 {
		return 0
	}

	cutoff := limiter.clock.Now().Add(-limiter.config.IdleTTL)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	evicted := 0
	for key, bucket := range limiter.buckets {
		if bucket.evictIfIdle(cutoff) {
			delete(limiter.buckets, key)
			evicted++
		}
	}

	return evicted
}

// Run sweeps idle buckets every interval until ctx is cancelled.
// It returns immediately when eviction is disabled.
func (limiter *Limiter) Run(ctx context.Context, interval time.Duration) {
	if limiter.config.IdleTTL <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
