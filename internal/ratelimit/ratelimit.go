// Package ratelimit provides token-bucket rate limiting keyed by operation
// class. Interview turns, transcript scoring, resume parsing, and transcript
// ingest carry distinct budgets because their per-call cost differs by orders
// of magnitude.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// OpClass identifies a class of generation-backend operation.
type OpClass string

// Operation classes with independent budgets.
const (
	OpInterviewTurn    OpClass = "interview_turn"
	OpScoring          OpClass = "scoring"
	OpResumeParse      OpClass = "resume_parse"
	OpTranscriptIngest OpClass = "transcript_ingest"
)

// ThrottledError indicates the budget for an operation class is exhausted.
// Callers should back off and retry after RetryAfter; this is not a failure
// of correctness.
type ThrottledError struct {
	Class      OpClass
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("operation class %q throttled, retry after %s", e.Class, e.RetryAfter)
}

// TokenBucket is a thread-safe token bucket with steady refill.
type TokenBucket struct {
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

func newTokenBucket(capacity int, refillRate float64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity), // start full
		lastRefill: time.Now(),
	}
}

// allow consumes a token if available. Returns whether the call may proceed
// and, when denied, how long until a token becomes available.
func (tb *TokenBucket) allow() (bool, time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)
	tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed.Seconds()*tb.refillRate)
	tb.lastRefill = now

	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true, 0
	}

	needed := 1.0 - tb.tokens
	wait := time.Duration(needed / tb.refillRate * float64(time.Second))
	return false, wait
}

// ClassConfig is the budget for one operation class.
type ClassConfig struct {
	Limit  int           // requests per window
	Window time.Duration // refill window
	Burst  int           // burst capacity (defaults to Limit if 0)
}

// Config holds per-class rate limiting configuration.
type Config struct {
	Enabled bool
	Classes map[OpClass]ClassConfig
}

// Limiter enforces per-operation-class budgets using token buckets.
type Limiter struct {
	buckets map[OpClass]*TokenBucket
	mu      sync.RWMutex
	config  *Config
}

// NewLimiter creates a limiter from the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = LoadConfig()
	}
	return &Limiter{
		buckets: make(map[OpClass]*TokenBucket),
		config:  config,
	}
}

// Allow checks whether one call of the given class may proceed. Returns a
// *ThrottledError when the class budget is exhausted.
func (l *Limiter) Allow(class OpClass) error {
	if !l.config.Enabled {
		return nil
	}

	cfg, ok := l.config.Classes[class]
	if !ok || cfg.Limit <= 0 {
		// Unconfigured classes are unlimited
		return nil
	}

	bucket := l.getBucket(class, cfg)
	allowed, retryAfter := bucket.allow()
	if !allowed {
		return &ThrottledError{Class: class, RetryAfter: retryAfter}
	}
	return nil
}

func (l *Limiter) getBucket(class OpClass, cfg ClassConfig) *TokenBucket {
	l.mu.RLock()
	bucket, exists := l.buckets[class]
	l.mu.RUnlock()
	if exists {
		return bucket
	}

	refillRate := float64(cfg.Limit) / cfg.Window.Seconds()
	capacity := cfg.Burst
	if capacity <= 0 {
		capacity = cfg.Limit
	}
	bucket = newTokenBucket(capacity, refillRate)

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, exists := l.buckets[class]; exists {
		return existing
	}
	l.buckets[class] = bucket
	return bucket
}
