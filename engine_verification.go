package authcore

import (
	"context"
	"errors"
	"strings"
)

// RequestVerificationOTP issues a fresh six-digit email-verification code,
// replacing any earlier one for the address. Delivering the code to the
// user is the caller's job; the engine never sends email.
func (e *Engine) RequestVerificationOTP(ctx context.Context, email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", ErrInvalidInput
	}
	now := e.now()

	code, err := e.otp.Issue(ctx, email, OTPPurposeVerification, "", now)
	if err != nil {
		return "", storageErr(err)
	}

	e.metricInc(MetricVerificationOTPIssued)
	e.emitAudit(auditVerificationSent, email, now, nil)
	return code, nil
}

// VerifyOTP checks a verification code. Success marks the record verified
// and keeps it, so re-submitting the right code stays successful; a wrong
// code burns one of the five attempts.
func (e *Engine) VerifyOTP(ctx context.Context, email, code string) error {
	if strings.TrimSpace(email) == "" || code == "" {
		return ErrInvalidInput
	}
	now := e.now()

	if _, err := e.otp.Verify(ctx, email, OTPPurposeVerification, code, now); err != nil {
		mapped := mapOTPError(err)
		if errors.Is(mapped, ErrOTPAttemptsExceeded) {
			e.metricInc(MetricOTPAttemptsExceeded)
			e.emitAudit(auditOTPExhausted, email, now, nil)
		} else if !errors.Is(mapped, ErrStorageUnavailable) {
			e.metricInc(MetricVerificationOTPFailure)
		}
		return mapped
	}

	e.metricInc(MetricVerificationOTPSuccess)
	e.emitAudit(auditEmailVerified, email, now, nil)
	return nil
}
