// Package limiters tracks failed login attempts per identifier and enforces
// the time-boxed account lockout.
package limiters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds the lockout policy constants.
type Config struct {
	MaxAttempts  int
	LockDuration time.Duration
}

var (
	// ErrLockoutUnavailable indicates the lockout backend is unreachable.
	ErrLockoutUnavailable = errors.New("lockout backend unavailable")
)

// Record is the per-identifier attempt document. Timestamps persist as
// RFC 3339 strings; LockedUntil is present only while a lockout is armed.
type Record struct {
	Count         int        `json:"count"`
	LastAttemptAt time.Time  `json:"last_attempt_at"`
	LockedUntil   *time.Time `json:"locked_until,omitempty"`
}

// Lockout tracks failed login attempts keyed by normalized identifier
// (trimmed, lowercased username or email). All mutations are atomic
// per key so concurrent failures cannot under-count the total.
type Lockout struct {
	redis  redis.UniversalClient
	prefix string
	config Config
}

// NewLockout creates a lockout tracker using the given key prefix.
func NewLockout(redisClient redis.UniversalClient, prefix string, cfg Config) *Lockout {
	if prefix == "" {
		prefix = "ac"
	}
	return &Lockout{redis: redisClient, prefix: prefix, config: cfg}
}

func (l *Lockout) key(identifier string) string {
	return l.prefix + ":la:" + normalizeIdentifier(identifier)
}

func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// backstopTTL is the physical Redis expiry for an attempt record. It sits
// well past the lock window so counters for abandoned or bogus identifiers
// do not pile up forever; IsLocked's lazy self-heal stays authoritative.
func (l *Lockout) backstopTTL() time.Duration {
	ttl := 24 * time.Hour
	if padded := 4 * l.config.LockDuration; padded > ttl {
		return padded
	}
	return ttl
}

// Get returns the attempt record for identifier, or the zero record when
// none exists.
func (l *Lockout) Get(ctx context.Context, identifier string) (Record, error) {
	var record Record

	data, err := l.redis.Get(ctx, l.key(identifier)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return record, nil
		}
		return record, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	return record, nil
}

// RecordFailure increments the failure counter for identifier and arms the
// lockout once the counter reaches the configured threshold. It returns the
// counter value after the increment.
func (l *Lockout) RecordFailure(ctx context.Context, identifier string, now time.Time) (int, error) {
	const maxRetries = 4
	key := l.key(identifier)

	for i := 0; i < maxRetries; i++ {
		var count int

		err := l.redis.Watch(ctx, func(tx *redis.Tx) error {
			var record Record

			data, err := tx.Get(ctx, key).Bytes()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if err == nil {
				if err := json.Unmarshal(data, &record); err != nil {
					return err
				}
			}

			record.Count++
			record.LastAttemptAt = now
			if record.Count >= l.config.MaxAttempts {
				lockedUntil := now.Add(l.config.LockDuration)
				record.LockedUntil = &lockedUntil
			}

			updated, err := json.Marshal(record)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, l.backstopTTL())
				return nil
			})
			if err != nil {
				return err
			}

			count = record.Count
			return nil
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
		}
		return count, nil
	}

	return 0, fmt.Errorf("%w: transaction retries exhausted", ErrLockoutUnavailable)
}

// Clear deletes the attempt record for identifier. Called once per known
// alias of a user after a successful login so a lockout attached to either
// alias is released together.
func (l *Lockout) Clear(ctx context.Context, identifier string) error {
	if err := l.redis.Del(ctx, l.key(identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLockoutUnavailable, err)
	}
	return nil
}

// IsLocked reports whether identifier is currently locked out and, if so,
// the remaining lockout time in minutes rounded up (a caller never sees
// "0 minutes remaining" while still locked). An expired lockout is cleared
// on observation.
func (l *Lockout) IsLocked(ctx context.Context, identifier string, now time.Time) (bool, int, error) {
	record, err := l.Get(ctx, identifier)
	if err != nil {
		return false, 0, err
	}

	if record.LockedUntil == nil {
		return false, 0, nil
	}

	if now.Before(*record.LockedUntil) {
		remaining := record.LockedUntil.Sub(now)
		minutes := int((remaining + time.Minute - 1) / time.Minute)
		return true, minutes, nil
	}

	// Lockout expired: self-heal lazily.
	if err := l.Clear(ctx, identifier); err != nil {
		return false, 0, err
	}
	return false, 0, nil
}
