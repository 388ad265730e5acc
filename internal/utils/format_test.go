package utils

import (
	"context"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   float64
		want string
	}{
		{0, "00:00.00"},
		{4000, "00:04.00"},
		{61234, "01:01.23"},
		{599999, "09:59.99"},
		{-5, "00:00.00"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.ms); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestFormatDayMillis(t *testing.T) {
	ms := time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC).UnixMilli()
	if got := FormatDayMillis(ms); got != "2025-03-09" {
		t.Fatalf("FormatDayMillis = %q", got)
	}
}

func TestRateLimiterSpacesRequestsPerHost(t *testing.T) {
	rl := NewRateLimiter(100)
	rl.SetHostRate("slow.example", 10)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := rl.Do(context.Background(), "slow.example", func() error { return nil }); err != nil {
			t.Fatalf("Do: %v", err)
		}
	}
	// burst 1 @ 10/s: 2 waits of ~100ms
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Fatalf("requests were not throttled, elapsed=%v", elapsed)
	}
}

func TestRateLimiterHonoursContext(t *testing.T) {
	rl := NewRateLimiter(0.001)
	ctx, cancel := context.WithCancel(context.Background())

	_ = rl.Wait(ctx, "h") // consumes the single token
	cancel()
	if err := rl.Wait(ctx, "h"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
