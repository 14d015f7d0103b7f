package middleware

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestConnectAllowed_PerIPCap(t *testing.T) {
	rl := NewIPRateLimiter(Limits{ConnsPerIP: 2, Messages: 10, Window: time.Second})
	defer rl.Close()

	if !rl.ConnectAllowed("1.2.3.4") || !rl.ConnectAllowed("1.2.3.4") {
		t.Fatalf("first two connections refused")
	}
	if rl.ConnectAllowed("1.2.3.4") {
		t.Fatalf("third connection allowed")
	}
	if !rl.ConnectAllowed("5.6.7.8") {
		t.Fatalf("other ip refused")
	}

	rl.Disconnect("1.2.3.4")
	if !rl.ConnectAllowed("1.2.3.4") {
		t.Fatalf("connection refused after disconnect")
	}
	if conns, _ := rl.Rejected(); conns != 1 {
		t.Fatalf("rejected conns = %d, want 1", conns)
	}
}

func TestMessageAllowed_TokenBucket(t *testing.T) {
	rl := NewIPRateLimiter(Limits{ConnsPerIP: 4, Messages: 3, Window: time.Second})
	defer rl.Close()
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	rl.ConnectAllowed("ip")
	for i := 0; i < 3; i++ {
		if !rl.MessageAllowed("ip") {
			t.Fatalf("message %d refused", i)
		}
	}
	if rl.MessageAllowed("ip") {
		t.Fatalf("message over budget allowed")
	}

	now = now.Add(time.Second)
	if !rl.MessageAllowed("ip") {
		t.Fatalf("bucket did not refill")
	}
	if _, msgs := rl.Rejected(); msgs != 1 {
		t.Fatalf("dropped msgs = %d, want 1", msgs)
	}
}

func TestMessageAllowed_RefillsWholeWindowsUpToBurst(t *testing.T) {
	rl := NewIPRateLimiter(Limits{Messages: 2, Window: 100 * time.Millisecond})
	defer rl.Close()
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	rl.MessageAllowed("ip")
	rl.MessageAllowed("ip")
	now = now.Add(90 * time.Millisecond)
	if rl.MessageAllowed("ip") {
		t.Fatalf("refilled before a full window")
	}

	now = now.Add(time.Second)
	for i := 0; i < 2; i++ {
		if !rl.MessageAllowed("ip") {
			t.Fatalf("message %d refused after idle", i)
		}
	}
	if rl.MessageAllowed("ip") {
		t.Fatalf("idle time banked more than one burst")
	}
}

func TestNewIPRateLimiter_FillsDefaults(t *testing.T) {
	rl := NewIPRateLimiter(Limits{ConnsPerIP: 3, Messages: -1})
	defer rl.Close()

	def := DefaultLimits()
	got := rl.Limits()
	if got.ConnsPerIP != 3 || got.Messages != def.Messages || got.Window != def.Window || got.PruneEvery != def.PruneEvery {
		t.Fatalf("limits = %+v", got)
	}
}

func TestPrune_KeepsConnectedVisitors(t *testing.T) {
	rl := NewIPRateLimiter(Limits{ConnsPerIP: 4, Messages: 3, Window: time.Second})
	defer rl.Close()

	rl.ConnectAllowed("a")
	rl.ConnectAllowed("b")
	rl.Disconnect("b")
	rl.prune()

	if _, ok := rl.buckets["a"]; !ok {
		t.Fatalf("connected visitor pruned")
	}
	if _, ok := rl.buckets["b"]; ok {
		t.Fatalf("idle visitor kept")
	}
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		remote string
		want   string
	}{
		{"remote addr", "", "10.0.0.1:5555", "10.0.0.1"},
		{"forwarded", "203.0.113.7", "10.0.0.1:5555", "203.0.113.7"},
		{"forwarded chain", "203.0.113.7, 10.0.0.2", "10.0.0.1:5555", "203.0.113.7"},
		{"no port", "", "10.0.0.1", "10.0.0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/ws", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := RealIP(r); got != tt.want {
				t.Fatalf("RealIP = %q, want %q", got, tt.want)
			}
		})
	}
}
