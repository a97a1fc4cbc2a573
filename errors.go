package authcore

import (
	"errors"
	"fmt"

	"github.com/caremesh/authcore/internal/stores"
)

var (
	// ErrInvalidInput is returned when a required argument is empty.
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidation is returned when a username, email or password fails
	// shape or policy checks. Always recoverable by re-prompting.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials is returned for a wrong identifier or password.
	// Unknown user and wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned when an operation references a user that
	// does not exist (outside the login path, which uses
	// ErrInvalidCredentials instead).
	ErrUserNotFound = errors.New("user not found")

	// ErrAccountLocked is returned while a lockout window is active.
	ErrAccountLocked = errors.New("account locked")

	// ErrAccountConfiguration signals a stored record with no usable
	// password hash. A data integrity fault for an operator, not a
	// condition the user can retry out of.
	ErrAccountConfiguration = errors.New("account has no usable password hash")

	// ErrDuplicateUser is returned when a username or email is taken.
	ErrDuplicateUser = errors.New("username or email already taken")

	// ErrPasswordMismatch is returned when a password and its confirmation
	// differ.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrPasswordTooShort is returned when a password is under the minimum
	// length.
	ErrPasswordTooShort = errors.New("password too short")

	// ErrPasswordTooWeak is returned when a password scores below the
	// configured minimum strength.
	ErrPasswordTooWeak = errors.New("password too weak")

	// ErrResetNotVerified is returned when a reset completes without a
	// verified reset code on file.
	ErrResetNotVerified = errors.New("reset code not verified")

	// ErrStorageUnavailable wraps backend I/O faults. Fatal to the request;
	// no partial state has been persisted.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrEngineNotReady is returned by Build when required collaborators
	// are missing.
	ErrEngineNotReady = errors.New("engine not ready")
)

// OTP sentinels, shared with the store so errors.Is works at either layer.
var (
	// ErrOTPNotFound indicates no code is on file for the email and flow.
	ErrOTPNotFound = stores.ErrOTPNotFound
	// ErrOTPExpired indicates the code outlived its TTL.
	ErrOTPExpired = stores.ErrOTPExpired
	// ErrOTPAttemptsExceeded indicates the code burned its attempt budget.
	ErrOTPAttemptsExceeded = stores.ErrOTPAttemptsExceeded
	// ErrOTPMismatch indicates a wrong code.
	ErrOTPMismatch = stores.ErrOTPMismatch
)

// LockedAccountError reports an active lockout and how long it has left.
// Unwraps to ErrAccountLocked.
type LockedAccountError struct {
	RemainingMinutes int
}

func (e *LockedAccountError) Error() string {
	return fmt.Sprintf("account locked, try again in %d minutes", e.RemainingMinutes)
}

func (e *LockedAccountError) Unwrap() error { return ErrAccountLocked }

// InvalidCredentialsError reports a failed login. RemainingAttempts is -1
// unless the caller is close enough to lockout to warrant a hint.
// Unwraps to ErrInvalidCredentials.
type InvalidCredentialsError struct {
	RemainingAttempts int
}

func (e *InvalidCredentialsError) Error() string {
	if e.RemainingAttempts >= 0 {
		return fmt.Sprintf("invalid credentials, %d attempts remaining", e.RemainingAttempts)
	}
	return "invalid credentials"
}

func (e *InvalidCredentialsError) Unwrap() error { return ErrInvalidCredentials }

// OTPMismatchError reports a wrong code and the attempts left before the
// record is destroyed. Unwraps to ErrOTPMismatch.
type OTPMismatchError struct {
	RemainingAttempts int
}

func (e *OTPMismatchError) Error() string {
	return fmt.Sprintf("wrong code, %d attempts remaining", e.RemainingAttempts)
}

func (e *OTPMismatchError) Unwrap() error { return ErrOTPMismatch }

// storageErr wraps a backend fault in ErrStorageUnavailable.
func storageErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}

// mapOTPError converts store-level OTP outcomes to the public taxonomy.
func mapOTPError(err error) error {
	var mismatch *stores.MismatchError
	switch {
	case errors.As(err, &mismatch):
		return &OTPMismatchError{RemainingAttempts: mismatch.Remaining}
	case errors.Is(err, stores.ErrOTPNotFound),
		errors.Is(err, stores.ErrOTPExpired),
		errors.Is(err, stores.ErrOTPAttemptsExceeded):
		return err
	default:
		return storageErr(err)
	}
}
