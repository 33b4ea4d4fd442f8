package services

import (
	"log/slog"
	"sync"
	"time"

	"github.com/frckbrice/auth-service/internal/models"
)

// ThrottleConfig holds the login throttle policy. The numbers are
// deployment policy, supplied by configuration.
type ThrottleConfig struct {
	MaxAttempts int
	Window      time.Duration
}

type throttleEntry struct {
	failures    int
	windowStart time.Time
}

// LoginThrottle counts failed login attempts per client key over a fixed
// window. A key at or over the threshold is rejected until the window
// expires; a successful login resets the key. Counters live in process and
// are guarded by one lock, so increment-and-compare is atomic per key.
type LoginThrottle struct {
	mu      sync.Mutex
	entries map[string]*throttleEntry
	config  ThrottleConfig
	logger  *slog.Logger
	now     func() time.Time
}

func NewLoginThrottle(config ThrottleConfig, logger *slog.Logger) *LoginThrottle {
	return &LoginThrottle{
		entries: make(map[string]*throttleEntry),
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// Check reports whether an attempt for the key is currently allowed. It is
// called before any password hashing so blocked attempts cost nothing.
func (t *LoginThrottle) Check(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[key]
	if !ok {
		return nil
	}

	if t.now().Sub(entry.windowStart) >= t.config.Window {
		delete(t.entries, key)
		return nil
	}

	if entry.failures >= t.config.MaxAttempts {
		t.logger.Warn("login throttled",
			slog.String("key_hint", keyHint(key)),
			slog.Int("failures", entry.failures),
		)
		return models.ErrRateLimited
	}

	return nil
}

// RecordFailure counts a failed attempt against the key.
func (t *LoginThrottle) RecordFailure(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[key]
	if !ok || t.now().Sub(entry.windowStart) >= t.config.Window {
		t.entries[key] = &throttleEntry{failures: 1, windowStart: t.now()}
		return
	}

	entry.failures++
}

// RecordSuccess clears the key after a successful login.
func (t *LoginThrottle) RecordSuccess(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, key)
}

// Sweep drops entries whose window has expired and returns the number
// removed. Called periodically by the cleanup task.
func (t *LoginThrottle) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	now := t.now()
	for key, entry := range t.entries {
		if now.Sub(entry.windowStart) >= t.config.Window {
			delete(t.entries, key)
			removed++
		}
	}
	return removed
}

// keyHint truncates a throttle key for logging so full emails do not land
// in the log stream.
func keyHint(key string) string {
	if len(key) <= 3 {
		return key
	}
	return key[:3] + "***"
}
