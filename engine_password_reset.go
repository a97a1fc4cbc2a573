package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// RequestPasswordReset issues a reset code for the account registered under
// email. The owning username is resolved now and stored with the code, so
// completion does not depend on a second identity lookup. Returns
// ErrUserNotFound when no account uses the address.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", ErrInvalidInput
	}
	now := e.now()

	user, err := e.credentials.GetByEmail(ctx, normalizeIdentifier(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", storageErr(err)
	}

	code, err := e.otp.Issue(ctx, email, OTPPurposeReset, user.Username, now)
	if err != nil {
		return "", storageErr(err)
	}

	e.metricInc(MetricResetRequested)
	e.emitAudit(auditResetRequested, email, now, nil)
	return code, nil
}

// VerifyResetOTP checks a reset code. Success marks the record verified but
// leaves it in place; only CompletePasswordReset consumes it.
func (e *Engine) VerifyResetOTP(ctx context.Context, email, code string) error {
	if strings.TrimSpace(email) == "" || code == "" {
		return ErrInvalidInput
	}
	now := e.now()

	if _, err := e.otp.Verify(ctx, email, OTPPurposeReset, code, now); err != nil {
		mapped := mapOTPError(err)
		if errors.Is(mapped, ErrOTPAttemptsExceeded) {
			e.metricInc(MetricOTPAttemptsExceeded)
			e.emitAudit(auditOTPExhausted, email, now, nil)
		} else if !errors.Is(mapped, ErrStorageUnavailable) {
			e.metricInc(MetricResetOTPFailure)
		}
		return mapped
	}

	e.metricInc(MetricResetOTPSuccess)
	e.emitAudit(auditResetVerified, email, now, nil)
	return nil
}

// CompletePasswordReset replaces the password for the account whose reset
// code was verified, then consumes the code so it cannot be replayed.
//
// A reset never clears an active lockout; a login straight after a reset
// still goes through the normal lockout check.
func (e *Engine) CompletePasswordReset(ctx context.Context, email, newPassword, confirmPassword string) error {
	if newPassword == "" || confirmPassword == "" || newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if utf8.RuneCountInString(newPassword) < e.config.Registration.MinPasswordLength {
		return fmt.Errorf("%w: minimum length is %d", ErrPasswordTooShort, e.config.Registration.MinPasswordLength)
	}
	now := e.now()

	record, err := e.otp.Get(ctx, email, OTPPurposeReset, now)
	if err != nil {
		return mapResetRecordError(err)
	}
	if !record.Verified {
		return ErrResetNotVerified
	}

	user, err := e.credentials.GetByUsername(ctx, normalizeIdentifier(record.Username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return storageErr(err)
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := e.credentials.UpdatePasswordHash(ctx, user.Username, hash, now); err != nil {
		return storageErr(err)
	}

	// Consume the code; a completed reset cannot be replayed.
	if err := e.otp.Delete(ctx, email, OTPPurposeReset); err != nil {
		return storageErr(err)
	}

	e.metricInc(MetricResetCompleted)
	e.emitAudit(auditResetCompleted, user.Username, now, nil)
	return nil
}

// mapResetRecordError shapes a missing or expired reset record into the
// public taxonomy. Both read as "nothing verified on file" to the caller.
func mapResetRecordError(err error) error {
	mapped := mapOTPError(err)
	switch {
	case errors.Is(mapped, ErrOTPNotFound), errors.Is(mapped, ErrOTPExpired):
		return ErrResetNotVerified
	default:
		return mapped
	}
}
