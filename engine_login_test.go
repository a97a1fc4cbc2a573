package authcore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAuthenticateSuccess(t *testing.T) {
	engine, store, clock := newTestEngine(t)
	ctx := context.Background()
	mustRegister(t, engine, "alice", "Str0ng!Pw", "alice@x.com")

	sess, err := engine.Authenticate(ctx, "alice", "Str0ng!Pw")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if !sess.Authenticated || sess.Username != "alice" || sess.Email != "alice@x.com" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if !sess.LoginTime.Equal(clock.Now()) {
		t.Fatalf("expected login time %v, got %v", clock.Now(), sess.LoginTime)
	}

	user, err := store.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if user.LoginCount != 1 || user.LastLoginAt == nil {
		t.Fatalf("expected login recorded, got %+v", user)
	}
}

func TestAuthenticateByEmailAndCaseInsensitive(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	mustRegister(t, engine, "alice", "Str0ng!Pw", "alice@x.com")

	for _, identifier := range []string{"ALICE", "Alice@X.com", "  alice@x.com "} {
		if _, err := engine.Authenticate(ctx, identifier, "Str0ng!Pw"); err != nil {
			t.Fatalf("Authenticate(%q) failed: %v", identifier, err)
		}
	}
}

func TestAuthenticateEmptyInput(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.Authenticate(ctx, "", "pw"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := engine.Authenticate(ctx, "alice", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthenticateUnknownUserMatchesWrongPassword(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	mustRegister(t, engine, "alice", "Str0ng!Pw", "alice@x.com")

	_, unknownErr := engine.Authenticate(ctx, "nobody", "whatever")
	_, wrongErr := engine.Authenticate(ctx, "alice", "wrong")

	if !errors.Is(unknownErr, ErrInvalidCredentials) || !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v and %v", unknownErr, wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("unknown user and wrong password must be indistinguishable: %q vs %q", unknownErr, wrongErr)
	}
}

func TestAuthenticateLockoutThreshold(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	mustRegister(t, engine, "alice", "Str0ng!Pw", "alice@x.com")

	for i := 1; i <= 4; i++ {
		_, err := engine.Authenticate(ctx, "alice", "wrong")
		var invalid *InvalidCredentialsError
		if !errors.As(err, &invalid) {
			t.Fatalf("attempt %d: expected InvalidCredentialsError, got %v", i, err)
		}
		// Remaining-attempts hint only appears near the lockout.
		switch i {
		case 1, 2:
			if invalid.RemainingAttempts != -1 {
				t.Fatalf("attempt %d: expected no hint, got %d", i, invalid.RemainingAttempts)
			}
		case 3:
			if invalid.RemainingAttempts != 2 {
				t.Fatalf("attempt 3: expected hint of 2, got %d", invalid.RemainingAttempts)
			}
		case 4:
			if invalid.RemainingAttempts != 1 {
				t.Fatalf("attempt 4: expected hint of 1, got %d", invalid.RemainingAttempts)
			}
		}
	}

	// Fifth failure arms the lockout.
	_, err := engine.Authenticate(ctx, "alice", "wrong")
	var locked *LockedAccountError
	if !errors.As(err, &locked) {
		t.Fatalf("expected LockedAccountError, got %v", err)
	}
	if locked.RemainingMinutes != 15 {
		t.Fatalf("expected 15 minutes, got %d", locked.RemainingMinutes)
	}

	// Even the correct password is refused while locked.
	if _, err := engine.Authenticate(ctx, "alice", "Str0ng!Pw"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}
}

func TestLockoutAppliesAcrossAliases(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	mustRegister(t, engine, "alice", "Str0ng!Pw", "alice@x.com")

	for i := 0; i < 5; i++ {
		_, _ = engine.Authenticate(ctx, "ALICE", "wrong")
	}

	// The lockout reached through the username also blocks the email alias.
	_, err := engine.Authenticate(ctx, "alice@x.com", "Str0ng!Pw")
	if !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked via email alias, got %v", err)
	}
}

func TestLockoutSelfHealsAfterWindow(t *testing.T) {
	engine, _, clock := newTestEngine(t)
	ctx := context.Background()
	mustRegister(t, engine, "alice", "Str0ng!Pw", "alice@x.com")

	for i := 0; i < 5; i++ {
		_, _ = engine.Authenticate(ctx, "alice", "wrong")
	}
	if _, err := engine.Authenticate(ctx, "alice", "Str0ng!Pw"); !errors.Is(err, ErrAccountLocked) {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}

	clock.Advance(15 * time.Minute)
	if _, err := engine.Authenticate(ctx, "alice", "Str0ng!Pw"); err != nil {
		t.Fatalf("expected login after lockout expiry, got %v", err)
	}

	record, err := engine.LoginAttempts(ctx, "alice")
	if err != nil {
		t.Fatalf("LoginAttempts failed: %v", err)
	}
	if record.Count != 0 || record.LockedUntil != nil {
		t.Fatalf("expected cleared attempt record, got %+v", record)
	}
}

func TestSuccessClearsAllAliases(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	mustRegister(t, engine, "alice", "Str0ng!Pw", "alice@x.com")

	// Failures split across both aliases.
	for i := 0; i < 2; i++ {
		_, _ = engine.Authenticate(ctx, "alice", "wrong")
		_, _ = engine.Authenticate(ctx, "alice@x.com", "wrong")
	}
	if _, err := engine.Authenticate(ctx, "alice", "Str0ng!Pw"); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	for _, alias := range []string{"alice", "alice@x.com"} {
		record, err := engine.LoginAttempts(ctx, alias)
		if err != nil {
			t.Fatalf("LoginAttempts(%s) failed: %v", alias, err)
		}
		if record.Count != 0 {
			t.Fatalf("expected %s cleared, got %+v", alias, record)
		}
	}
}

func TestEmptyStoredHashIsConfigurationError(t *testing.T) {
	engine, store, clock := newTestEngine(t)
	ctx := context.Background()

	if err := store.Create(ctx, &UserRecord{
		Username:  "ghost",
		Email:     "ghost@x.com",
		CreatedAt: clock.Now(),
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := engine.Authenticate(ctx, "ghost", "whatever"); !errors.Is(err, ErrAccountConfiguration) {
		t.Fatalf("expected ErrAccountConfiguration, got %v", err)
	}

	// A configuration fault must not burn a login attempt.
	record, err := engine.LoginAttempts(ctx, "ghost")
	if err != nil {
		t.Fatalf("LoginAttempts failed: %v", err)
	}
	if record.Count != 0 {
		t.Fatalf("expected no attempts recorded, got %+v", record)
	}
}

func TestLogoutResetsSession(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	mustRegister(t, engine, "alice", "Str0ng!Pw", "alice@x.com")

	sess, err := engine.Authenticate(ctx, "alice", "Str0ng!Pw")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	engine.Logout(sess)
	if sess.Authenticated || sess.Username != "" {
		t.Fatalf("expected zero session after logout, got %+v", sess)
	}

	engine.Logout(nil) // must not panic
}

func TestAuthenticateMetrics(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	mustRegister(t, engine, "alice", "Str0ng!Pw", "alice@x.com")

	_, _ = engine.Authenticate(ctx, "alice", "wrong")
	if _, err := engine.Authenticate(ctx, "alice", "Str0ng!Pw"); err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	snap := engine.MetricsSnapshot()
	if !snap.Enabled {
		t.Fatal("expected metrics enabled")
	}
	if snap.Counters["login_failure"] != 1 || snap.Counters["login_success"] != 1 {
		t.Fatalf("unexpected counters: %v", snap.Counters)
	}
}
