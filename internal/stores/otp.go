// Package stores keeps the short-lived one-time-password records backing
// email verification and password reset.
package stores

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Purpose distinguishes the two OTP flows. Codes issued for one purpose are
// never accepted by the other.
type Purpose string

const (
	// PurposeVerification covers post-signup email verification.
	PurposeVerification Purpose = "verification"
	// PurposeReset covers password reset.
	PurposeReset Purpose = "reset"
)

// Config holds the OTP policy constants. TTLs apply per purpose.
type Config struct {
	VerificationTTL time.Duration
	ResetTTL        time.Duration
	MaxAttempts     int
}

var (
	// ErrOTPNotFound indicates no record exists for the email and purpose.
	ErrOTPNotFound = errors.New("otp record not found")
	// ErrOTPExpired indicates the record outlived its purpose TTL.
	ErrOTPExpired = errors.New("otp expired")
	// ErrOTPAttemptsExceeded indicates the record burned through its attempt
	// budget and has been deleted.
	ErrOTPAttemptsExceeded = errors.New("otp attempts exceeded")
	// ErrOTPMismatch indicates the submitted code did not match.
	ErrOTPMismatch = errors.New("otp mismatch")
	// ErrOTPUnavailable indicates the OTP backend is unreachable.
	ErrOTPUnavailable = errors.New("otp backend unavailable")
)

// MismatchError reports a wrong code together with the attempts the caller
// has left before the record is destroyed.
type MismatchError struct {
	Remaining int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("otp mismatch, %d attempts remaining", e.Remaining)
}

func (e *MismatchError) Unwrap() error { return ErrOTPMismatch }

// Record is the stored OTP document. Username is set only for reset codes,
// resolved at issuance so completion does not depend on a second lookup.
// Timestamps persist as RFC 3339 strings.
type Record struct {
	Code     string    `json:"code"`
	Purpose  Purpose   `json:"purpose"`
	Username string    `json:"username,omitempty"`
	IssuedAt time.Time `json:"issued_at"`
	Verified bool      `json:"verified"`
	Attempts int       `json:"attempts"`
}

// OTP stores one record per (email, purpose) pair. Verification is atomic
// per key so concurrent guesses cannot dodge the attempt counter.
type OTP struct {
	redis  redis.UniversalClient
	prefix string
	config Config
}

// NewOTP creates an OTP store using the given key prefix.
func NewOTP(redisClient redis.UniversalClient, prefix string, cfg Config) *OTP {
	if prefix == "" {
		prefix = "ac"
	}
	return &OTP{redis: redisClient, prefix: prefix, config: cfg}
}

func (s *OTP) key(email string, purpose Purpose) string {
	return s.prefix + ":otp:" + string(purpose) + ":" + normalizeEmail(email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *OTP) ttlFor(purpose Purpose) time.Duration {
	if purpose == PurposeReset {
		return s.config.ResetTTL
	}
	return s.config.VerificationTTL
}

// backstopTTL is the physical Redis expiry for a record. It carries a grace
// margin past the logical TTL so a code checked just after its lifetime is
// still readable and reports expired; eviction only bounds storage growth.
func (s *OTP) backstopTTL(purpose Purpose) time.Duration {
	return 2 * s.ttlFor(purpose)
}

// GenerateCode returns a six-digit code drawn uniformly from
// [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// Issue creates a fresh code for the email and purpose, replacing any
// existing record so only the latest code is ever valid. For reset codes
// the caller supplies the username the record belongs to.
func (s *OTP) Issue(ctx context.Context, email string, purpose Purpose, username string, now time.Time) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}

	record := Record{
		Code:     code,
		Purpose:  purpose,
		Username: username,
		IssuedAt: now,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOTPUnavailable, err)
	}

	if err := s.redis.Set(ctx, s.key(email, purpose), data, s.backstopTTL(purpose)).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrOTPUnavailable, err)
	}
	return code, nil
}

// Verify checks code against the stored record for the email and purpose.
// On success the record is marked verified and kept so a later step (reset
// completion) can confirm the check happened; re-verifying an already
// verified record with the right code succeeds again. A wrong code burns
// one attempt and destroys the record once the budget is gone. An expired
// record is deleted on observation.
func (s *OTP) Verify(ctx context.Context, email string, purpose Purpose, code string, now time.Time) (*Record, error) {
	const maxRetries = 4
	key := s.key(email, purpose)

	for i := 0; i < maxRetries; i++ {
		var (
			result  *Record
			outcome error
		)

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					outcome = ErrOTPNotFound
					return nil
				}
				return err
			}

			var record Record
			if err := json.Unmarshal(data, &record); err != nil {
				return err
			}

			if record.Attempts >= s.config.MaxAttempts {
				outcome = ErrOTPAttemptsExceeded
				return deleteInTx(ctx, tx, key)
			}

			elapsed := now.Sub(record.IssuedAt)
			if elapsed > s.ttlFor(purpose) {
				outcome = ErrOTPExpired
				return deleteInTx(ctx, tx, key)
			}
			// Logical expiry above is authoritative; the rewrite keeps the
			// grace-padded physical backstop.
			remaining := s.backstopTTL(purpose) - elapsed

			if subtle.ConstantTimeCompare([]byte(code), []byte(record.Code)) != 1 {
				record.Attempts++
				if record.Attempts >= s.config.MaxAttempts {
					outcome = ErrOTPAttemptsExceeded
					return deleteInTx(ctx, tx, key)
				}
				outcome = &MismatchError{Remaining: s.config.MaxAttempts - record.Attempts}
				return setInTx(ctx, tx, key, record, remaining)
			}

			record.Verified = true
			result = &record
			return setInTx(ctx, tx, key, record, remaining)
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOTPUnavailable, err)
		}
		if outcome != nil {
			return nil, outcome
		}
		return result, nil
	}

	return nil, fmt.Errorf("%w: transaction retries exhausted", ErrOTPUnavailable)
}

// Get returns the live record for the email and purpose. An expired record
// is deleted on observation and reported as expired.
func (s *OTP) Get(ctx context.Context, email string, purpose Purpose, now time.Time) (*Record, error) {
	key := s.key(email, purpose)

	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrOTPNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrOTPUnavailable, err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOTPUnavailable, err)
	}

	if now.Sub(record.IssuedAt) > s.ttlFor(purpose) {
		if err := s.redis.Del(ctx, key).Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOTPUnavailable, err)
		}
		return nil, ErrOTPExpired
	}
	return &record, nil
}

// Delete removes the record for the email and purpose.
func (s *OTP) Delete(ctx context.Context, email string, purpose Purpose) error {
	if err := s.redis.Del(ctx, s.key(email, purpose)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrOTPUnavailable, err)
	}
	return nil
}

func deleteInTx(ctx context.Context, tx *redis.Tx, key string) error {
	_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		return nil
	})
	return err
}

func setInTx(ctx context.Context, tx *redis.Tx, key string, record Record, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, ttl)
		return nil
	})
	return err
}
