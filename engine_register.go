package authcore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Register validates the request and creates the user record. Username and
// email uniqueness are checked case-insensitively; the password must meet
// both the minimum length and the configured strength floor.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*UserRecord, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if username == "" || email == "" || req.Password == "" {
		e.metricInc(MetricRegistrationInvalid)
		return nil, ErrInvalidInput
	}
	if err := validateUsername(username); err != nil {
		e.metricInc(MetricRegistrationInvalid)
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		e.metricInc(MetricRegistrationInvalid)
		return nil, err
	}
	if utf8.RuneCountInString(req.Password) < e.config.Registration.MinPasswordLength {
		e.metricInc(MetricRegistrationInvalid)
		return nil, fmt.Errorf("%w: minimum length is %d", ErrPasswordTooShort, e.config.Registration.MinPasswordLength)
	}
	if PasswordStrength(req.Password) < e.config.Registration.MinStrength {
		e.metricInc(MetricRegistrationInvalid)
		return nil, fmt.Errorf("%w: minimum strength is %s", ErrPasswordTooWeak, e.config.Registration.MinStrength)
	}

	available, err := e.UsernameAvailable(ctx, username)
	if err != nil {
		return nil, err
	}
	if !available {
		e.metricInc(MetricRegistrationDuplicate)
		return nil, fmt.Errorf("%w: username", ErrDuplicateUser)
	}
	available, err = e.EmailAvailable(ctx, email)
	if err != nil {
		return nil, err
	}
	if !available {
		e.metricInc(MetricRegistrationDuplicate)
		return nil, fmt.Errorf("%w: email", ErrDuplicateUser)
	}

	hash, err := e.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := e.now()
	record := &UserRecord{
		Username:      username,
		Email:         email,
		PasswordHash:  hash,
		Role:          req.Role,
		FullName:      strings.TrimSpace(req.FullName),
		CreatedAt:     now,
		Verified:      req.Verified,
		AvatarInitial: avatarInitial(username),
	}
	if err := e.credentials.Create(ctx, record); err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			e.metricInc(MetricRegistrationDuplicate)
			return nil, err
		}
		return nil, storageErr(err)
	}

	e.metricInc(MetricRegistrationSuccess)
	e.emitAudit(auditRegistered, username, now, map[string]string{"role": req.Role})
	return record, nil
}

// UsernameAvailable reports whether username is free, case-insensitively.
func (e *Engine) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	_, err := e.credentials.GetByUsername(ctx, normalizeIdentifier(username))
	if err == nil {
		return false, nil
	}
	if errors.Is(err, ErrUserNotFound) {
		return true, nil
	}
	return false, storageErr(err)
}

// EmailAvailable reports whether email is free, case-insensitively.
func (e *Engine) EmailAvailable(ctx context.Context, email string) (bool, error) {
	_, err := e.credentials.GetByEmail(ctx, normalizeIdentifier(email))
	if err == nil {
		return false, nil
	}
	if errors.Is(err, ErrUserNotFound) {
		return true, nil
	}
	return false, storageErr(err)
}
