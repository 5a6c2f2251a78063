package middleware

import (
	"testing"
	"time"
)

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	first := rl.limiter("10.0.0.1")
	clock = clock.Add(5 * time.Minute)
	rl.limiter("10.0.0.2")
	if len(rl.visitors) != 2 {
		t.Fatalf("Expected 2 tracked clients, got %d", len(rl.visitors))
	}

	clock = clock.Add(6 * time.Minute)
	rl.limiter("10.0.0.3")
	if _, ok := rl.visitors["10.0.0.1"]; ok {
		t.Errorf("Expected 10.0.0.1 to be evicted after 11 idle minutes")
	}
	if len(rl.visitors) != 2 {
		t.Errorf("Expected 2 tracked clients after sweep, got %d", len(rl.visitors))
	}

	clock = clock.Add(11 * time.Minute)
	if again := rl.limiter("10.0.0.1"); again == first {
		t.Errorf("Expected a returning client to get a fresh bucket")
	}
	if len(rl.visitors) != 1 {
		t.Errorf("Expected only the returning client to remain, got %d", len(rl.visitors))
	}
}

func TestRateLimiterKeepsActiveClients(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }

	first := rl.limiter("10.0.0.1")
	for i := 0; i < 5; i++ {
		clock = clock.Add(4 * time.Minute)
		if got := rl.limiter("10.0.0.1"); got != first {
			t.Fatalf("Expected the same bucket for an active client at step %d", i)
		}
	}
	if len(rl.visitors) != 1 {
		t.Errorf("Expected 1 tracked client, got %d", len(rl.visitors))
	}
}
