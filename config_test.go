package authcore

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	mutations := []func(*Config){
		func(c *Config) { c.Lockout.MaxAttempts = 0 },
		func(c *Config) { c.Lockout.Duration = 0 },
		func(c *Config) { c.OTP.VerificationTTL = 0 },
		func(c *Config) { c.OTP.ResetTTL = -time.Minute },
		func(c *Config) { c.OTP.MaxAttempts = 0 },
		func(c *Config) { c.Registration.MinPasswordLength = 0 },
		func(c *Config) { c.Registration.MinStrength = Strength(9) },
		func(c *Config) { c.Password.Algorithm = "md5" },
		func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 },
	}

	for i, mutate := range mutations {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrEngineNotReady) {
			t.Errorf("mutation %d: expected ErrEngineNotReady, got %v", i, err)
		}
	}
}

func TestOTPTTLTable(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.OTP.TTL(OTPPurposeVerification); got != 5*time.Minute {
		t.Fatalf("expected 5m verification TTL, got %v", got)
	}
	if got := cfg.OTP.TTL(OTPPurposeReset); got != 10*time.Minute {
		t.Fatalf("expected 10m reset TTL, got %v", got)
	}
}
