package http

import (
	"fmt"
	"sync/atomic"
	"testing"
)

func TestRateLimiterPerMinuteLimit(t *testing.T) {
	rl := newRateLimiter(3, 100)
	defer rl.stop()

	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1", nil) {
			t.Fatalf("request %d denied under the limit", i+1)
		}
	}
	if rl.allow("10.0.0.1", nil) {
		t.Error("request over the per-minute limit allowed")
	}
}

func TestRateLimiterBurstLimit(t *testing.T) {
	// Plenty of per-minute headroom; only the burst cap should bite.
	rl := newRateLimiter(100, 2)
	defer rl.stop()

	if !rl.allow("10.0.0.1", nil) || !rl.allow("10.0.0.1", nil) {
		t.Fatal("requests within the burst cap denied")
	}
	metrics := &securityMetrics{}
	if rl.allow("10.0.0.1", metrics) {
		t.Error("request over the burst cap allowed")
	}
	if atomic.LoadInt64(&metrics.rateLimitHits) != 1 {
		t.Error("rate limit hit not counted")
	}
}

func TestRateLimiterZeroBurstDefaultsToPerMinute(t *testing.T) {
	rl := newRateLimiter(5, 0)
	defer rl.stop()

	for i := 0; i < 5; i++ {
		if !rl.allow("10.0.0.1", nil) {
			t.Fatalf("request %d denied with defaulted burst", i+1)
		}
	}
	if rl.allow("10.0.0.1", nil) {
		t.Error("sixth request allowed")
	}
}

func TestRateLimiterTracksClientsSeparately(t *testing.T) {
	rl := newRateLimiter(1, 1)
	defer rl.stop()

	for i := 0; i < 4; i++ {
		ip := fmt.Sprintf("10.0.0.%d", i)
		if !rl.allow(ip, nil) {
			t.Errorf("first request from %s denied", ip)
		}
	}
	if rl.ActiveClients() != 4 {
		t.Errorf("ActiveClients() = %d, want 4", rl.ActiveClients())
	}
}
