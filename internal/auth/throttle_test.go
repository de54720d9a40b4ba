package auth

import (
	"fmt"
	"testing"
	"time"
)

func newTestThrottle(now *time.Time) *Throttle {
	th := NewThrottle(3, time.Minute, 5*time.Minute)
	th.now = func() time.Time { return *now }
	return th
}

func TestThrottle_LocksAfterMaxFailures(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	th := newTestThrottle(&now)

	for i := range 2 {
		if th.Fail("hallway") {
			t.Fatalf("Fail() #%d started lockout early", i+1)
		}
		if _, ok := th.Allow("hallway"); !ok {
			t.Fatalf("Allow() = false after %d failures", i+1)
		}
	}

	if !th.Fail("hallway") {
		t.Error("third Fail() should start lockout")
	}

	retry, ok := th.Allow("hallway")
	if ok {
		t.Fatal("Allow() = true during lockout")
	}
	if retry != 5*time.Minute {
		t.Errorf("retry = %v, want 5m", retry)
	}

	if _, ok := th.Allow("garage"); !ok {
		t.Error("other keys must not be locked")
	}

	now = now.Add(5*time.Minute + time.Second)
	if _, ok := th.Allow("hallway"); !ok {
		t.Error("Allow() = false after lockout expired")
	}
}

func TestThrottle_WindowExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	th := newTestThrottle(&now)

	th.Fail("hallway")
	th.Fail("hallway")
	now = now.Add(2 * time.Minute)

	if th.Fail("hallway") {
		t.Error("failures outside the window should not count")
	}
	if _, ok := th.Allow("hallway"); !ok {
		t.Error("Allow() = false, want true")
	}
}

func TestThrottle_Reset(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	th := newTestThrottle(&now)

	th.Fail("hallway")
	th.Fail("hallway")
	th.Reset("hallway")

	if th.Fail("hallway") {
		t.Error("Reset() should clear the failure count")
	}
}

func TestThrottle_Sweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	th := newTestThrottle(&now)

	for i := range sweepThreshold + 1 {
		th.Fail(fmt.Sprintf("10.0.0.%d", i))
	}
	now = now.Add(10 * time.Minute)
	th.Fail("fresh")

	th.mu.Lock()
	n := len(th.entries)
	th.mu.Unlock()
	if n != 1 {
		t.Errorf("entries = %d after sweep, want 1", n)
	}
}
