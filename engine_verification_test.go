package authcore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestVerificationOTPRoundTrip(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	code, err := engine.RequestVerificationOTP(ctx, "alice@x.com")
	if err != nil {
		t.Fatalf("RequestVerificationOTP failed: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected six-digit code, got %q", code)
	}

	if err := engine.VerifyOTP(ctx, "alice@x.com", code); err != nil {
		t.Fatalf("VerifyOTP failed: %v", err)
	}

	// The verified flag is idempotent: the right code keeps working.
	if err := engine.VerifyOTP(ctx, "alice@x.com", code); err != nil {
		t.Fatalf("second VerifyOTP failed: %v", err)
	}
}

func TestVerifyOTPWithoutRequest(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	if err := engine.VerifyOTP(context.Background(), "alice@x.com", "123456"); !errors.Is(err, ErrOTPNotFound) {
		t.Fatalf("expected ErrOTPNotFound, got %v", err)
	}
}

func TestVerifyOTPMismatchAndExhaustion(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	code, err := engine.RequestVerificationOTP(ctx, "alice@x.com")
	if err != nil {
		t.Fatalf("RequestVerificationOTP failed: %v", err)
	}
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	for i := 1; i <= 4; i++ {
		err := engine.VerifyOTP(ctx, "alice@x.com", wrong)
		var mismatch *OTPMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("attempt %d: expected OTPMismatchError, got %v", i, err)
		}
		if mismatch.RemainingAttempts != 5-i {
			t.Fatalf("attempt %d: expected %d remaining, got %d", i, 5-i, mismatch.RemainingAttempts)
		}
	}

	if err := engine.VerifyOTP(ctx, "alice@x.com", wrong); !errors.Is(err, ErrOTPAttemptsExceeded) {
		t.Fatalf("expected ErrOTPAttemptsExceeded, got %v", err)
	}

	// The record is gone; a fresh request starts clean.
	if err := engine.VerifyOTP(ctx, "alice@x.com", code); !errors.Is(err, ErrOTPNotFound) {
		t.Fatalf("expected ErrOTPNotFound after exhaustion, got %v", err)
	}
	fresh, err := engine.RequestVerificationOTP(ctx, "alice@x.com")
	if err != nil {
		t.Fatalf("re-request failed: %v", err)
	}
	if err := engine.VerifyOTP(ctx, "alice@x.com", fresh); err != nil {
		t.Fatalf("VerifyOTP on fresh code failed: %v", err)
	}
}

func TestVerificationOTPExpiry(t *testing.T) {
	engine, _, clock := newTestEngine(t)
	ctx := context.Background()

	code, err := engine.RequestVerificationOTP(ctx, "alice@x.com")
	if err != nil {
		t.Fatalf("RequestVerificationOTP failed: %v", err)
	}

	clock.Advance(4*time.Minute + 59*time.Second)
	if err := engine.VerifyOTP(ctx, "alice@x.com", code); err != nil {
		t.Fatalf("VerifyOTP within TTL failed: %v", err)
	}

	// Re-issue, then step just past the five minute TTL.
	code, err = engine.RequestVerificationOTP(ctx, "alice@x.com")
	if err != nil {
		t.Fatalf("re-request failed: %v", err)
	}
	clock.Advance(5*time.Minute + time.Second)
	if err := engine.VerifyOTP(ctx, "alice@x.com", code); !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}
}

func TestVerificationOTPExpiryWithRedisEviction(t *testing.T) {
	mr, client := newTestRedis(t)

	cfg := DefaultConfig()
	cfg.Password.Algorithm = HashSHA256
	engine, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithCredentials(newMemStore()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	clock := newTestClock()
	engine.now = clock.Now
	ctx := context.Background()

	code, err := engine.RequestVerificationOTP(ctx, "alice@x.com")
	if err != nil {
		t.Fatalf("RequestVerificationOTP failed: %v", err)
	}

	// Move the Redis clock along with the engine clock, as production Redis
	// would: a code checked just past its lifetime must read as expired,
	// not as never-issued.
	clock.Advance(5*time.Minute + time.Second)
	mr.FastForward(5*time.Minute + time.Second)

	if err := engine.VerifyOTP(ctx, "alice@x.com", code); !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}
}

func TestReissueInvalidatesOldCode(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	first, err := engine.RequestVerificationOTP(ctx, "alice@x.com")
	if err != nil {
		t.Fatalf("RequestVerificationOTP failed: %v", err)
	}
	second, err := engine.RequestVerificationOTP(ctx, "alice@x.com")
	if err != nil {
		t.Fatalf("re-request failed: %v", err)
	}
	if first == second {
		t.Skip("codes collided, nothing to distinguish")
	}

	if err := engine.VerifyOTP(ctx, "alice@x.com", first); err == nil {
		t.Fatal("replaced code must not verify")
	}
	if err := engine.VerifyOTP(ctx, "alice@x.com", second); err != nil {
		t.Fatalf("VerifyOTP failed: %v", err)
	}
}

func TestVerificationOTPEmptyInput(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.RequestVerificationOTP(ctx, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := engine.VerifyOTP(ctx, "alice@x.com", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
