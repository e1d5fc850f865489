package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterWindow(t *testing.T) {
	current := time.Unix(1700000000, 0)
	limiter := NewMemoryLimiter(MemoryLimiterConfig{
		Now: func() time.Time { return current },
	})
	ctx := context.Background()

	decision, err := limiter.Allow(ctx, "k", 2, time.Minute)
	if err != nil || !decision.Allowed || decision.Remaining != 1 {
		t.Fatalf("first call: %+v %v", decision, err)
	}
	decision, err = limiter.Allow(ctx, "k", 2, time.Minute)
	if err != nil || !decision.Allowed || decision.Remaining != 0 {
		t.Fatalf("second call: %+v %v", decision, err)
	}
	decision, err = limiter.Allow(ctx, "k", 2, time.Minute)
	if err != nil || decision.Allowed {
		t.Fatalf("third call should be limited: %+v %v", decision, err)
	}
	if decision.ResetAt.IsZero() {
		t.Fatalf("limited decision carries no reset time")
	}

	current = current.Add(2 * time.Minute)
	decision, err = limiter.Allow(ctx, "k", 2, time.Minute)
	if err != nil || !decision.Allowed {
		t.Fatalf("window did not reset: %+v %v", decision, err)
	}
}

func TestMemoryLimiterIsolatesKeys(t *testing.T) {
	limiter := NewMemoryLimiter(MemoryLimiterConfig{})
	ctx := context.Background()

	if d, _ := limiter.Allow(ctx, "a", 1, time.Minute); !d.Allowed {
		t.Fatalf("first key blocked")
	}
	if d, _ := limiter.Allow(ctx, "b", 1, time.Minute); !d.Allowed {
		t.Fatalf("second key shares the first key's bucket")
	}
	if d, _ := limiter.Allow(ctx, "a", 1, time.Minute); d.Allowed {
		t.Fatalf("first key not limited on its second call")
	}
}

func TestMemoryLimiterZeroLimitAllowsEverything(t *testing.T) {
	limiter := NewMemoryLimiter(MemoryLimiterConfig{})
	for i := 0; i < 10; i++ {
		d, err := limiter.Allow(context.Background(), "k", 0, time.Minute)
		if err != nil || !d.Allowed {
			t.Fatalf("call %d: %+v %v", i, d, err)
		}
	}
}

func TestMemoryLimiterCapacity(t *testing.T) {
	current := time.Unix(1700000000, 0)
	limiter := NewMemoryLimiter(MemoryLimiterConfig{
		Now:     func() time.Time { return current },
		MaxKeys: 2,
	})
	ctx := context.Background()

	limiter.Allow(ctx, "a", 1, time.Minute)
	limiter.Allow(ctx, "b", 1, time.Minute)
	if _, err := limiter.Allow(ctx, "c", 1, time.Minute); err == nil {
		t.Fatalf("expected capacity error with all buckets live")
	}

	// Expired buckets are reclaimed before refusing a new key.
	current = current.Add(2 * time.Minute)
	if _, err := limiter.Allow(ctx, "c", 1, time.Minute); err != nil {
		t.Fatalf("expected eviction to make room: %v", err)
	}
}
