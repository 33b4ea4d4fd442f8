package services

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/frckbrice/auth-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestThrottle(maxAttempts int, window time.Duration) (*LoginThrottle, *time.Time) {
	throttle := NewLoginThrottle(ThrottleConfig{MaxAttempts: maxAttempts, Window: window}, slog.Default())
	current := time.Now()
	throttle.now = func() time.Time { return current }
	return throttle, &current
}

func TestLoginThrottle_AllowsUnderThreshold(t *testing.T) {
	throttle, _ := newTestThrottle(5, 15*time.Minute)

	for i := 0; i < 4; i++ {
		require.NoError(t, throttle.Check("u@example.com"))
		throttle.RecordFailure("u@example.com")
	}

	assert.NoError(t, throttle.Check("u@example.com"))
}

func TestLoginThrottle_BlocksAtThreshold(t *testing.T) {
	throttle, _ := newTestThrottle(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		require.NoError(t, throttle.Check("u@example.com"))
		throttle.RecordFailure("u@example.com")
	}

	err := throttle.Check("u@example.com")
	assert.ErrorIs(t, err, models.ErrRateLimited)
}

func TestLoginThrottle_WindowExpiryUnblocks(t *testing.T) {
	throttle, current := newTestThrottle(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		throttle.RecordFailure("u@example.com")
	}
	require.ErrorIs(t, throttle.Check("u@example.com"), models.ErrRateLimited)

	*current = current.Add(15*time.Minute + time.Second)
	assert.NoError(t, throttle.Check("u@example.com"))
}

func TestLoginThrottle_SuccessResetsCounter(t *testing.T) {
	throttle, _ := newTestThrottle(5, 15*time.Minute)

	for i := 0; i < 4; i++ {
		throttle.RecordFailure("u@example.com")
	}
	throttle.RecordSuccess("u@example.com")

	// A fresh burst of failures is needed before the key blocks again
	for i := 0; i < 4; i++ {
		require.NoError(t, throttle.Check("u@example.com"))
		throttle.RecordFailure("u@example.com")
	}
	assert.NoError(t, throttle.Check("u@example.com"))
}

func TestLoginThrottle_KeysAreIndependent(t *testing.T) {
	throttle, _ := newTestThrottle(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		throttle.RecordFailure("attacker@example.com")
	}

	assert.ErrorIs(t, throttle.Check("attacker@example.com"), models.ErrRateLimited)
	assert.NoError(t, throttle.Check("victim@example.com"))
}

func TestLoginThrottle_FailureAfterExpiredWindowStartsNewWindow(t *testing.T) {
	throttle, current := newTestThrottle(5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		throttle.RecordFailure("u@example.com")
	}

	*current = current.Add(16 * time.Minute)
	throttle.RecordFailure("u@example.com")

	// Only one failure counted in the new window
	assert.NoError(t, throttle.Check("u@example.com"))
}

func TestLoginThrottle_Sweep(t *testing.T) {
	throttle, current := newTestThrottle(5, 15*time.Minute)

	throttle.RecordFailure("stale@example.com")
	*current = current.Add(16 * time.Minute)
	throttle.RecordFailure("fresh@example.com")

	removed := throttle.Sweep()
	assert.Equal(t, 1, removed)
	assert.NoError(t, throttle.Check("stale@example.com"))
}

func TestLoginThrottle_ConcurrentFailuresAreCounted(t *testing.T) {
	throttle := NewLoginThrottle(ThrottleConfig{MaxAttempts: 100, Window: time.Minute}, slog.Default())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			throttle.RecordFailure("u@example.com")
		}()
	}
	wg.Wait()

	// All 100 failures must have been counted: the next check blocks
	assert.ErrorIs(t, throttle.Check("u@example.com"), models.ErrRateLimited)
}

func TestLoginThrottle_ConcurrentDistinctKeys(t *testing.T) {
	throttle := NewLoginThrottle(ThrottleConfig{MaxAttempts: 2, Window: time.Minute}, slog.Default())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("user%d@example.com", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			throttle.RecordFailure(key)
		}()
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		assert.NoError(t, throttle.Check(fmt.Sprintf("user%d@example.com", i)))
	}
}
