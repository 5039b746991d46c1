package chi

import (
	"testing"
	"time"
)

func TestUserLimiter_Disabled(t *testing.T) {
	l := NewUserLimiter(0, 0)
	for range 100 {
		if !l.Allow("u1") {
			t.Fatal("disabled limiter must allow")
		}
	}

	var nilLimiter *UserLimiter
	if !nilLimiter.Allow("u1") {
		t.Fatal("nil limiter must allow")
	}
}

func TestUserLimiter_BurstThenReject(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewUserLimiter(60, 2)
	l.now = func() time.Time { return now }

	if !l.Allow("u1") || !l.Allow("u1") {
		t.Fatal("burst of 2 should be allowed")
	}
	if l.Allow("u1") {
		t.Fatal("third request should be limited")
	}

	// Other users have their own bucket.
	if !l.Allow("u2") {
		t.Fatal("u2 should not share u1's bucket")
	}

	now = now.Add(time.Second)
	if !l.Allow("u1") {
		t.Fatal("token should refill after one second at 60 rpm")
	}
}

func TestUserLimiter_BurstDefaultsToRate(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewUserLimiter(3, 0)
	l.now = func() time.Time { return now }

	for i := range 3 {
		if !l.Allow("u") {
			t.Fatalf("request %d should pass", i)
		}
	}
	if l.Allow("u") {
		t.Fatal("fourth request should be limited")
	}
}

func TestUserLimiter_SweepsIdleBuckets(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewUserLimiter(60, 1)
	l.now = func() time.Time { return now }

	l.Allow("a")
	l.Allow("b")
	if got := l.tracked(); got != 2 {
		t.Fatalf("tracked = %d, want 2", got)
	}

	now = now.Add(2 * limiterIdleTTL)
	l.Allow("c")
	if got := l.tracked(); got != 1 {
		t.Fatalf("tracked after sweep = %d, want 1", got)
	}
}
