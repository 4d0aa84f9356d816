package services

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	l := NewRateLimiter(5, time.Minute)

	for i := 1; i <= 5; i++ {
		if allowed, _ := l.Allow("10.0.0.1"); !allowed {
			t.Fatalf("attempt %d should be allowed", i)
		}
	}
	allowed, retryAfter := l.Allow("10.0.0.1")
	if allowed {
		t.Fatal("6th attempt should be rejected")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Errorf("retryAfter = %v, want within (0, window]", retryAfter)
	}
}

func TestRateLimiterIsPerClient(t *testing.T) {
	l := NewRateLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		l.Allow("10.0.0.1")
	}
	if allowed, _ := l.Allow("10.0.0.1"); allowed {
		t.Fatal("first client should be throttled")
	}
	if allowed, _ := l.Allow("10.0.0.2"); !allowed {
		t.Error("second client must not share the first client's bucket")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	l := NewRateLimiter(2, 30*time.Millisecond)

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.1")
	if allowed, _ := l.Allow("10.0.0.1"); allowed {
		t.Fatal("3rd attempt inside the window should be rejected")
	}

	time.Sleep(40 * time.Millisecond)
	if allowed, _ := l.Allow("10.0.0.1"); !allowed {
		t.Error("a new window should admit the client again")
	}
}

func TestRateLimiterRejectedAttemptsStillCount(t *testing.T) {
	// The fixed window counts attempts, not successes: hammering while
	// throttled does not shorten the wait.
	l := NewRateLimiter(2, time.Minute)

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.1")
	for i := 0; i < 10; i++ {
		if allowed, _ := l.Allow("10.0.0.1"); allowed {
			t.Fatalf("attempt %d should stay rejected inside the window", i+3)
		}
	}
}
