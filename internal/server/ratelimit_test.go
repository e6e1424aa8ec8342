package server

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(60)
	require.NotNil(t, rl)
	assert.Equal(t, 60, rl.requestsPerMinute)
	assert.NotNil(t, rl.clients)
}

func TestRateLimiter_Allow_UnderLimit(t *testing.T) {
	rl := NewRateLimiter(5)

	for i := 0; i < 5; i++ {
		assert.NoError(t, rl.Allow("client-1"), "request %d should pass", i+1)
	}
	assert.Equal(t, 5, rl.Usage("client-1"))
}

func TestRateLimiter_Allow_OverLimit(t *testing.T) {
	rl := NewRateLimiter(3)

	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Allow("client-1"))
	}

	err := rl.Allow("client-1")
	require.Error(t, err)

	var rle *RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, 3, rle.Limit)
	assert.Greater(t, rle.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, rle.RetryAfter, time.Minute)
	assert.Contains(t, err.Error(), "rate limit exceeded")

	// The rejected request is not counted.
	assert.Equal(t, 3, rl.Usage("client-1"))
}

func TestRateLimiter_Allow_SeparateClients(t *testing.T) {
	rl := NewRateLimiter(1)

	require.NoError(t, rl.Allow("client-1"))
	require.Error(t, rl.Allow("client-1"))

	assert.NoError(t, rl.Allow("client-2"))
}

func TestRateLimiter_Allow_ZeroDisables(t *testing.T) {
	rl := NewRateLimiter(0)

	for i := 0; i < 100; i++ {
		assert.NoError(t, rl.Allow("client-1"))
	}
}

func TestRateLimiter_Allow_WindowReset(t *testing.T) {
	rl := NewRateLimiter(1)

	require.NoError(t, rl.Allow("client-1"))
	require.Error(t, rl.Allow("client-1"))

	// Backdate the window to simulate a minute passing.
	rl.mu.Lock()
	rl.clients["client-1"].windowStart = time.Now().Add(-61 * time.Second)
	rl.mu.Unlock()

	assert.NoError(t, rl.Allow("client-1"))
	assert.Equal(t, 1, rl.Usage("client-1"))
}

func TestRateLimiter_Usage(t *testing.T) {
	rl := NewRateLimiter(10)

	assert.Equal(t, 0, rl.Usage("unknown"))

	require.NoError(t, rl.Allow("client-1"))
	require.NoError(t, rl.Allow("client-1"))
	assert.Equal(t, 2, rl.Usage("client-1"))

	// An expired window reads as zero.
	rl.mu.Lock()
	rl.clients["client-1"].windowStart = time.Now().Add(-2 * time.Minute)
	rl.mu.Unlock()
	assert.Equal(t, 0, rl.Usage("client-1"))
}

func TestRateLimitError_Error(t *testing.T) {
	err := &RateLimitError{Limit: 120, RetryAfter: 30 * time.Second}

	assert.Contains(t, err.Error(), "120/min")
	assert.Contains(t, err.Error(), "30s")
	assert.True(t, errors.As(error(err), new(*RateLimitError)))
}

func BenchmarkRateLimiter_Allow(b *testing.B) {
	rl := NewRateLimiter(1 << 30)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = rl.Allow("bench-client")
	}
}
