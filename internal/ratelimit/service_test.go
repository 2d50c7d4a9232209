package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	wallet "github.com/idaralabs/Idara-Wallet"
)

type mockRediser struct {
	counters map[string]int64
	expiries map[string]time.Duration
}

func newMockRediser() *mockRediser {
	return &mockRediser{
		counters: make(map[string]int64),
		expiries: make(map[string]time.Duration),
	}
}

func (m *mockRediser) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.counters[key]++
	return redis.NewIntResult(m.counters[key], nil)
}

func (m *mockRediser) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expiries[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (m *mockRediser) Close() error { return nil }

// reset simulates the window elapsing for all recipients.
func (m *mockRediser) reset() {
	m.counters = make(map[string]int64)
}

func TestRateLimit_AllowsUpToCeiling(t *testing.T) {
	db := newMockRediser()
	svc := NewService(WithDB(db), WithCeiling(5))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := svc.CheckAndRecord(ctx, "jane@example.com"); err != nil {
			t.Fatalf("attempt %d rejected: %v", i+1, err)
		}
	}

	err := svc.CheckAndRecord(ctx, "jane@example.com")
	if err == nil {
		t.Fatal("expected 6th attempt to be rejected")
	}
	if code := wallet.ErrorCode(err); code != wallet.EThrottle {
		t.Errorf("incorrect error code, want %s got %s", wallet.EThrottle, code)
	}
}

func TestRateLimit_RejectionDoesNotSelfHeal(t *testing.T) {
	db := newMockRediser()
	svc := NewService(WithDB(db), WithCeiling(5))

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_ = svc.CheckAndRecord(ctx, "+15551234567")
	}

	if err := svc.CheckAndRecord(ctx, "+15551234567"); err == nil {
		t.Fatal("expected recipient to remain throttled within window")
	}
}

func TestRateLimit_WindowAnchoredAtFirstAttempt(t *testing.T) {
	db := newMockRediser()
	svc := NewService(WithDB(db), WithCeiling(5), WithWindow(time.Hour))

	ctx := context.Background()
	if err := svc.CheckAndRecord(ctx, "jane@example.com"); err != nil {
		t.Fatal("first attempt rejected:", err)
	}

	if len(db.expiries) != 1 {
		t.Fatal("expected window expiry to be set on first attempt")
	}
	for _, expiry := range db.expiries {
		if expiry != time.Hour {
			t.Errorf("incorrect window length, want %s got %s", time.Hour, expiry)
		}
	}

	// Later attempts must not extend the window.
	_ = svc.CheckAndRecord(ctx, "jane@example.com")
	if len(db.expiries) != 1 {
		t.Error("window expiry was re-set after first attempt")
	}
}

func TestRateLimit_NewWindowAfterReset(t *testing.T) {
	db := newMockRediser()
	svc := NewService(WithDB(db), WithCeiling(5))

	ctx := context.Background()
	for i := 0; i < 6; i++ {
		_ = svc.CheckAndRecord(ctx, "jane@example.com")
	}

	db.reset()

	if err := svc.CheckAndRecord(ctx, "jane@example.com"); err != nil {
		t.Fatal("expected fresh window to allow issuance:", err)
	}
}

func TestRateLimit_RecipientsAreIndependent(t *testing.T) {
	db := newMockRediser()
	svc := NewService(WithDB(db), WithCeiling(5))

	ctx := context.Background()
	for i := 0; i < 6; i++ {
		_ = svc.CheckAndRecord(ctx, "jane@example.com")
	}

	if err := svc.CheckAndRecord(ctx, "john@example.com"); err != nil {
		t.Fatal("throttling one recipient affected another:", err)
	}
}
