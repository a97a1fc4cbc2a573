package authcore

import (
	"fmt"
	"time"

	"github.com/caremesh/authcore/internal/limiters"
	"github.com/caremesh/authcore/internal/stores"
	"github.com/caremesh/authcore/jwt"
	"github.com/caremesh/authcore/password"
)

// HashAlgorithm selects the password hashing scheme.
type HashAlgorithm string

const (
	// HashArgon2id is the default.
	HashArgon2id HashAlgorithm = "argon2id"
	// HashSHA256 exists for verifying records migrated from legacy systems.
	// Do not pick it for new deployments.
	HashSHA256 HashAlgorithm = "sha256"
)

// LockoutConfig controls the failed-login lockout.
type LockoutConfig struct {
	MaxAttempts int
	Duration    time.Duration
}

// OTPConfig controls one-time-password issuance and verification. TTLs are
// per purpose so the two flows can diverge without touching call sites.
type OTPConfig struct {
	VerificationTTL time.Duration
	ResetTTL        time.Duration
	MaxAttempts     int
}

// TTL returns the lifetime for codes of the given purpose.
func (c OTPConfig) TTL(purpose OTPPurpose) time.Duration {
	if purpose == OTPPurposeReset {
		return c.ResetTTL
	}
	return c.VerificationTTL
}

// PasswordConfig selects and tunes the password hasher.
type PasswordConfig struct {
	Algorithm HashAlgorithm
	Argon2    password.Config
}

// RegistrationConfig controls signup policy.
type RegistrationConfig struct {
	MinPasswordLength int
	MinStrength       Strength
}

// SessionTokenConfig enables optional signed session tokens.
type SessionTokenConfig struct {
	Enabled       bool
	SigningMethod jwt.SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	TTL           time.Duration
	Issuer        string
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
}

// Config is the full engine configuration. Zero fields take defaults from
// DefaultConfig; construct through the Builder rather than by hand.
type Config struct {
	RedisPrefix  string
	Lockout      LockoutConfig
	OTP          OTPConfig
	Password     PasswordConfig
	Registration RegistrationConfig
	SessionToken SessionTokenConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

// DefaultConfig returns the stock policy: five attempts then a fifteen
// minute lockout, five minute verification codes, ten minute reset codes,
// argon2id hashing.
func DefaultConfig() Config {
	return Config{
		RedisPrefix: "ac",
		Lockout: LockoutConfig{
			MaxAttempts: 5,
			Duration:    15 * time.Minute,
		},
		OTP: OTPConfig{
			VerificationTTL: 5 * time.Minute,
			ResetTTL:        10 * time.Minute,
			MaxAttempts:     5,
		},
		Password: PasswordConfig{
			Algorithm: HashArgon2id,
			Argon2:    password.DefaultConfig(),
		},
		Registration: RegistrationConfig{
			MinPasswordLength: 6,
			MinStrength:       StrengthFair,
		},
		Audit: AuditConfig{
			BufferSize: 256,
		},
	}
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.Lockout.MaxAttempts <= 0 {
		return fmt.Errorf("%w: lockout max attempts must be positive", ErrEngineNotReady)
	}
	if c.Lockout.Duration <= 0 {
		return fmt.Errorf("%w: lockout duration must be positive", ErrEngineNotReady)
	}
	if c.OTP.VerificationTTL <= 0 || c.OTP.ResetTTL <= 0 {
		return fmt.Errorf("%w: otp ttls must be positive", ErrEngineNotReady)
	}
	if c.OTP.MaxAttempts <= 0 {
		return fmt.Errorf("%w: otp max attempts must be positive", ErrEngineNotReady)
	}
	if c.Registration.MinPasswordLength <= 0 {
		return fmt.Errorf("%w: minimum password length must be positive", ErrEngineNotReady)
	}
	if c.Registration.MinStrength < StrengthVeryWeak || c.Registration.MinStrength > StrengthStrong {
		return fmt.Errorf("%w: minimum strength out of range", ErrEngineNotReady)
	}
	switch c.Password.Algorithm {
	case HashArgon2id, HashSHA256:
	default:
		return fmt.Errorf("%w: unknown hash algorithm %q", ErrEngineNotReady, c.Password.Algorithm)
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return fmt.Errorf("%w: audit buffer size must be positive", ErrEngineNotReady)
	}
	return nil
}

func (c Config) lockoutConfig() limiters.Config {
	return limiters.Config{
		MaxAttempts:  c.Lockout.MaxAttempts,
		LockDuration: c.Lockout.Duration,
	}
}

func (c Config) otpConfig() stores.Config {
	return stores.Config{
		VerificationTTL: c.OTP.VerificationTTL,
		ResetTTL:        c.OTP.ResetTTL,
		MaxAttempts:     c.OTP.MaxAttempts,
	}
}
