package delivery_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roamsafe/alertkit/pkg/delivery"
)

func TestLinearBackoff(t *testing.T) {
	t.Parallel()

	b := delivery.LinearBackoff{Interval: 5 * time.Second, MaxInterval: 12 * time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{-1, 0},
		{1, 5 * time.Second},
		{2, 10 * time.Second},
		{3, 12 * time.Second}, // capped
		{100, 12 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, b.NextDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestLinearBackoff_Defaults(t *testing.T) {
	t.Parallel()

	b := delivery.LinearBackoff{}
	assert.Equal(t, 5*time.Second, b.NextDelay(1))
	assert.Equal(t, 2*time.Minute, b.NextDelay(1000))
}

func TestExponentialBackoff(t *testing.T) {
	t.Parallel()

	b := delivery.ExponentialBackoff{
		InitialInterval: time.Second,
		MaxInterval:     10 * time.Second,
		Multiplier:      2,
	}

	assert.Equal(t, time.Duration(0), b.NextDelay(0))
	assert.Equal(t, time.Second, b.NextDelay(1))
	assert.Equal(t, 2*time.Second, b.NextDelay(2))
	assert.Equal(t, 4*time.Second, b.NextDelay(3))
	assert.Equal(t, 10*time.Second, b.NextDelay(10)) // capped
}

func TestExponentialBackoff_Jitter(t *testing.T) {
	t.Parallel()

	b := delivery.ExponentialBackoff{
		InitialInterval: time.Second,
		MaxInterval:     time.Minute,
		Multiplier:      2,
		JitterFactor:    0.1,
	}

	for i := 0; i < 100; i++ {
		got := b.NextDelay(3)
		assert.GreaterOrEqual(t, got, time.Duration(float64(4*time.Second)*0.9))
		assert.LessOrEqual(t, got, time.Duration(float64(4*time.Second)*1.1))
	}
}

func TestFixedBackoff(t *testing.T) {
	t.Parallel()

	b := delivery.FixedBackoff{Interval: 3 * time.Second}
	assert.Equal(t, time.Duration(0), b.NextDelay(0))
	assert.Equal(t, 3*time.Second, b.NextDelay(1))
	assert.Equal(t, 3*time.Second, b.NextDelay(9))
}
