package delivery

import (
	"math"
	"math/rand"
	"time"
)

// Backoff computes the delay before a retry attempt. Attempt starts at 1
// for the first retry. Implementations must be safe for concurrent use.
type Backoff interface {
	NextDelay(attempt int) time.Duration
}

// LinearBackoff spaces retries evenly: Interval * attempt, capped at
// MaxInterval. Predictable spacing suits alert delivery, where an operator
// watching the dashboard should be able to tell when the next attempt runs.
type LinearBackoff struct {
	Interval    time.Duration
	MaxInterval time.Duration
}

func (l LinearBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	interval := l.Interval
	if interval == 0 {
		interval = 5 * time.Second
	}
	max := l.MaxInterval
	if max == 0 {
		max = 2 * time.Minute
	}

	delay := interval * time.Duration(attempt)
	if delay > max {
		delay = max
	}
	return delay
}

// ExponentialBackoff doubles the delay each attempt with optional jitter.
// Jitter spreads retries from a mass-failure burst so a recovering provider
// is not hit by every notification at once.
type ExponentialBackoff struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	JitterFactor    float64
}

func (e ExponentialBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	initial := e.InitialInterval
	if initial == 0 {
		initial = time.Second
	}
	max := e.MaxInterval
	if max == 0 {
		max = 2 * time.Minute
	}
	multiplier := e.Multiplier
	if multiplier == 0 {
		multiplier = 2
	}

	interval := float64(initial) * math.Pow(multiplier, float64(attempt-1))

	// Zero jitter stays deterministic for tests.
	if e.JitterFactor > 0 {
		randomJitter := (rand.Float64()*2 - 1) * e.JitterFactor
		interval *= 1 + randomJitter
	}

	if interval > float64(max) {
		interval = float64(max)
	}
	return time.Duration(interval)
}

// FixedBackoff retries at a constant interval.
type FixedBackoff struct {
	Interval time.Duration
}

func (f FixedBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return f.Interval
}

// DefaultBackoff is the scheduler default: 5 second linear spacing capped
// at 2 minutes.
func DefaultBackoff() Backoff {
	return LinearBackoff{Interval: 5 * time.Second, MaxInterval: 2 * time.Minute}
}
