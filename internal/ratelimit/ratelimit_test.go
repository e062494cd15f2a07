package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroDelayDoesNotWait(t *testing.T) {
	r := NewSimpleRateLimiter(0, 0)

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestWaitSpacesActions(t *testing.T) {
	r := NewSimpleRateLimiter(40*time.Millisecond, 40*time.Millisecond)

	require.NoError(t, r.Wait(context.Background()))
	start := time.Now()
	require.NoError(t, r.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestWaitHonoursContext(t *testing.T) {
	r := NewSimpleRateLimiter(time.Second, time.Second)
	require.NoError(t, r.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSetDelayKeepsOrder(t *testing.T) {
	r := NewSimpleRateLimiter(0, 0)
	r.SetDelay(2*time.Second, time.Second)

	min, max := r.Delays()
	assert.Equal(t, 2*time.Second, min)
	assert.Equal(t, 2*time.Second, max)
}

func TestAdaptiveBacksOffAndRecovers(t *testing.T) {
	a := NewAdaptiveRateLimiter(time.Second, 2*time.Second)

	for i := 0; i < 3; i++ {
		a.RecordError()
	}
	min, max := a.Delays()
	assert.Equal(t, 1500*time.Millisecond, min)
	assert.Equal(t, 3*time.Second, max)

	for i := 0; i < 6*10; i++ {
		a.RecordSuccess()
	}
	min, _ = a.Delays()
	assert.Equal(t, time.Second, min, "never relaxes below the configured floor")
}

func TestAdaptiveBackoffFromZero(t *testing.T) {
	a := NewAdaptiveRateLimiter(0, 0)
	for i := 0; i < 3; i++ {
		a.RecordError()
	}

	min, max := a.Delays()
	assert.Equal(t, time.Second, min)
	assert.Equal(t, time.Second, max)
}

func TestAdaptiveBackoffIsCapped(t *testing.T) {
	a := NewAdaptiveRateLimiter(50*time.Second, 100*time.Second)
	for i := 0; i < 30; i++ {
		a.RecordError()
	}

	min, max := a.Delays()
	assert.Equal(t, time.Minute, min)
	assert.Equal(t, 2*time.Minute, max)
}
