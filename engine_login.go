package authcore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caremesh/authcore/session"
)

// Authenticate verifies identifier (username or email) and password and
// returns an authenticated session.
//
// The lockout check runs before any credential lookup, so a locked-out
// caller learns nothing about whether the identifier exists. Unknown user
// and wrong password both return InvalidCredentialsError; a remaining
// attempts hint appears only once two or fewer attempts are left. A
// successful login clears attempt records for the supplied identifier and
// both of the user's aliases, so a lockout reached through one alias is
// released for all of them.
func (e *Engine) Authenticate(ctx context.Context, identifier, plaintext string) (*session.Session, error) {
	if strings.TrimSpace(identifier) == "" || plaintext == "" {
		return nil, ErrInvalidInput
	}
	now := e.now()

	locked, minutes, err := e.lockout.IsLocked(ctx, identifier, now)
	if err != nil {
		return nil, storageErr(err)
	}
	if locked {
		e.metricInc(MetricLoginLocked)
		e.emitAudit(auditLoginLocked, identifier, now, map[string]string{
			"remaining_minutes": strconv.Itoa(minutes),
		})
		return nil, &LockedAccountError{RemainingMinutes: minutes}
	}

	user, err := e.lookupUser(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, e.loginFailure(ctx, identifier, now)
		}
		return nil, err
	}

	// A lockout reached through another alias applies to every alias.
	for _, alias := range []string{user.Username, user.Email} {
		if normalizeIdentifier(alias) == normalizeIdentifier(identifier) {
			continue
		}
		locked, minutes, err := e.lockout.IsLocked(ctx, alias, now)
		if err != nil {
			return nil, storageErr(err)
		}
		if locked {
			e.metricInc(MetricLoginLocked)
			e.emitAudit(auditLoginLocked, identifier, now, map[string]string{
				"remaining_minutes": strconv.Itoa(minutes),
			})
			return nil, &LockedAccountError{RemainingMinutes: minutes}
		}
	}

	if user.PasswordHash == "" {
		e.emitAudit(auditAccountConfigFail, identifier, now, nil)
		return nil, ErrAccountConfiguration
	}

	ok, err := e.hasher.Verify(plaintext, user.PasswordHash)
	if err != nil {
		// An undecodable stored digest is a data fault, not a bad guess.
		e.emitAudit(auditAccountConfigFail, identifier, now, nil)
		return nil, fmt.Errorf("%w: %v", ErrAccountConfiguration, err)
	}
	if !ok {
		return nil, e.loginFailure(ctx, identifier, now)
	}

	for _, alias := range []string{identifier, user.Username, user.Email} {
		if err := e.lockout.Clear(ctx, alias); err != nil {
			return nil, storageErr(err)
		}
	}
	if err := e.credentials.RecordLogin(ctx, user.Username, now); err != nil {
		return nil, storageErr(err)
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(auditLoginSuccess, user.Username, now, nil)
	return session.New(user.Username, user.Role, user.Email, now), nil
}

// loginFailure records one failed attempt and shapes the error, switching
// to a lockout once the attempt budget is spent.
func (e *Engine) loginFailure(ctx context.Context, identifier string, now time.Time) error {
	count, err := e.lockout.RecordFailure(ctx, identifier, now)
	if err != nil {
		return storageErr(err)
	}

	remaining := e.config.Lockout.MaxAttempts - count
	if remaining <= 0 {
		minutes := int(e.config.Lockout.Duration / time.Minute)
		e.metricInc(MetricLoginLocked)
		e.emitAudit(auditLoginLocked, identifier, now, map[string]string{
			"remaining_minutes": strconv.Itoa(minutes),
		})
		return &LockedAccountError{RemainingMinutes: minutes}
	}

	e.metricInc(MetricLoginFailure)
	e.emitAudit(auditLoginFailure, identifier, now, map[string]string{
		"remaining_attempts": strconv.Itoa(remaining),
	})

	if remaining <= 2 {
		return &InvalidCredentialsError{RemainingAttempts: remaining}
	}
	return &InvalidCredentialsError{RemainingAttempts: -1}
}

// lookupUser resolves identifier against usernames first, then emails,
// both case-insensitively.
func (e *Engine) lookupUser(ctx context.Context, identifier string) (*UserRecord, error) {
	user, err := e.credentials.GetByUsername(ctx, normalizeIdentifier(identifier))
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, storageErr(err)
	}

	user, err = e.credentials.GetByEmail(ctx, normalizeIdentifier(identifier))
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, storageErr(err)
	}
	return nil, ErrUserNotFound
}

// Logout resets s to its unauthenticated zero value. There is no
// server-side token state to revoke.
func (e *Engine) Logout(s *session.Session) {
	if s == nil {
		return
	}
	now := e.now()
	username := s.Username
	s.Clear()

	e.metricInc(MetricLogout)
	e.emitAudit(auditLogout, username, now, nil)
}

// IssueSessionToken signs s into a compact token. Requires SessionToken to
// be enabled in the configuration.
func (e *Engine) IssueSessionToken(s *session.Session) (string, error) {
	if e.tokens == nil {
		return "", errors.New("session tokens are not enabled")
	}
	return e.tokens.Issue(s)
}

// ParseSessionToken verifies a token and reconstructs its session.
func (e *Engine) ParseSessionToken(token string) (*session.Session, error) {
	if e.tokens == nil {
		return nil, errors.New("session tokens are not enabled")
	}
	return e.tokens.Parse(token)
}
