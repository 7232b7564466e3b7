package worker

import (
	"math"
	"time"
)

// Defaults sized for blob deletion against object storage: ride out a
// transient outage within a few minutes instead of hammering the endpoint.
const (
	defaultMaxRetries    = 5
	defaultInitialDelay  = 2 * time.Second
	defaultMaxDelay      = time.Minute
	defaultBackoffFactor = 2.0
)

// RetryPolicy defines exponential backoff for reaper delete attempts.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// withDefaults fills zero fields so a partially configured policy works.
func (r RetryPolicy) withDefaults() RetryPolicy {
	if r.MaxRetries <= 0 {
		r.MaxRetries = defaultMaxRetries
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = defaultInitialDelay
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = defaultMaxDelay
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = defaultBackoffFactor
	}
	return r
}

// NextDelay returns the delay before the given attempt (1-based), growing
// by BackoffFactor and clamped to MaxDelay. Overflow clamps too.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	p := r.withDefaults()
	if attempt < 1 {
		attempt = 1
	}
	delay := time.Duration(float64(p.InitialDelay) * math.Pow(p.BackoffFactor, float64(attempt-1)))
	if delay <= 0 || delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}
