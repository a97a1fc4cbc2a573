package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/caremesh/authcore/internal/limiters"
	"github.com/caremesh/authcore/internal/stores"
	"github.com/caremesh/authcore/jwt"
	"github.com/caremesh/authcore/password"
)

// Engine is the account-security core: registration, login with lockout,
// email verification and password reset. Construct one through the Builder
// and share it; all methods are safe for concurrent use.
type Engine struct {
	config      Config
	redis       redis.UniversalClient
	credentials CredentialStore
	hasher      password.Hasher
	lockout     *limiters.Lockout
	otp         *stores.OTP
	tokens      *jwt.Manager
	audit       *auditDispatcher
	metrics     *Metrics

	// now is the single wall-clock read per operation; tests override it.
	now func() time.Time
}

// Close flushes the audit dispatcher. The Redis client is caller-owned and
// is not closed here.
func (e *Engine) Close() {
	if e.audit != nil {
		e.audit.close()
	}
}

// MetricsSnapshot returns current counter values.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// AuditDropped reports audit events lost to backpressure since startup.
func (e *Engine) AuditDropped() uint64 {
	if e.audit == nil {
		return 0
	}
	return e.audit.droppedCount()
}

// LoginAttempts returns the raw attempt record for identifier, for hosts
// that surface lockout state in an admin view.
func (e *Engine) LoginAttempts(ctx context.Context, identifier string) (LoginAttemptRecord, error) {
	record, err := e.lockout.Get(ctx, identifier)
	if err != nil {
		return LoginAttemptRecord{}, storageErr(err)
	}
	return record, nil
}

// UserStats returns profile-view statistics for username.
func (e *Engine) UserStats(ctx context.Context, username string) (*UserStats, error) {
	user, err := e.credentials.GetByUsername(ctx, normalizeIdentifier(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageErr(err)
	}

	days := int(e.now().Sub(user.CreatedAt) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	return &UserStats{
		Username:    user.Username,
		Role:        user.Role,
		Verified:    user.Verified,
		LoginCount:  user.LoginCount,
		MemberDays:  days,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}, nil
}
