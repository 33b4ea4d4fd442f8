package background

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockResetTokenStore struct {
	calls   atomic.Int32
	cleared int64
	err     error
}

func (m *mockResetTokenStore) ClearExpiredResetTokens(ctx context.Context, before time.Time) (int64, error) {
	m.calls.Add(1)
	return m.cleared, m.err
}

type mockSweeper struct {
	calls atomic.Int32
}

func (m *mockSweeper) Sweep() int {
	m.calls.Add(1)
	return 0
}

func TestCleanupManager_RunsImmediatelyAndStops(t *testing.T) {
	store := &mockResetTokenStore{cleared: 3}
	sweeper := &mockSweeper{}
	cm := NewCleanupManager(store, sweeper, slog.Default(), time.Hour)

	done := make(chan struct{})
	go func() {
		cm.Start(context.Background())
		close(done)
	}()

	// The first pass happens before the first tick
	assert.Eventually(t, func() bool {
		return store.calls.Load() >= 1 && sweeper.calls.Load() >= 1
	}, time.Second, 10*time.Millisecond)

	cm.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager did not stop")
	}
}

func TestCleanupManager_StopsOnContextCancel(t *testing.T) {
	cm := NewCleanupManager(&mockResetTokenStore{}, &mockSweeper{}, slog.Default(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		cm.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup manager did not stop on context cancel")
	}
}

func TestCleanupManager_TicksRepeatedly(t *testing.T) {
	store := &mockResetTokenStore{}
	cm := NewCleanupManager(store, &mockSweeper{}, slog.Default(), 20*time.Millisecond)

	go cm.Start(context.Background())
	defer cm.Stop()

	assert.Eventually(t, func() bool {
		return store.calls.Load() >= 3
	}, time.Second, 10*time.Millisecond)
}
