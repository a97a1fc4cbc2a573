package authcore

import (
	"context"
	"time"

	"github.com/caremesh/authcore/internal/limiters"
	"github.com/caremesh/authcore/internal/stores"
)

// UserRecord is the identity and credential document owned by the
// credential store. Timestamps persist as RFC 3339 strings; LastLoginAt is
// absent until the first successful login.
type UserRecord struct {
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"password_hash"`
	Role          string     `json:"role"`
	FullName      string     `json:"full_name"`
	CreatedAt     time.Time  `json:"created_at"`
	Verified      bool       `json:"verified"`
	AvatarInitial string     `json:"avatar_initial"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	LoginCount    int        `json:"login_count"`
	PasswordReset *time.Time `json:"password_reset_at,omitempty"`
}

// CredentialStore is implemented by the host application. Lookups are
// case-insensitive; a miss returns ErrUserNotFound. Any other failure is
// treated as a storage fault and aborts the calling operation.
type CredentialStore interface {
	// GetByUsername returns the record whose username matches
	// case-insensitively.
	GetByUsername(ctx context.Context, username string) (*UserRecord, error)

	// GetByEmail returns the record whose email matches case-insensitively.
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)

	// Create persists a new record. Uniqueness races are the store's
	// concern; a collision returns ErrDuplicateUser.
	Create(ctx context.Context, record *UserRecord) error

	// UpdatePasswordHash replaces the stored hash and stamps
	// password_reset_at.
	UpdatePasswordHash(ctx context.Context, username, passwordHash string, at time.Time) error

	// RecordLogin stamps last_login_at and increments login_count.
	RecordLogin(ctx context.Context, username string, at time.Time) error
}

// RegisterRequest carries the fields of a signup attempt.
type RegisterRequest struct {
	Username string
	Password string
	Email    string
	Role     string
	FullName string

	// Verified marks the account as already email-verified, for callers
	// that run the OTP step before creating the record.
	Verified bool
}

// OTPPurpose selects which flow a code belongs to.
type OTPPurpose = stores.Purpose

const (
	// OTPPurposeVerification covers post-signup email verification.
	OTPPurposeVerification = stores.PurposeVerification
	// OTPPurposeReset covers password reset.
	OTPPurposeReset = stores.PurposeReset
)

// LoginAttemptRecord is the per-identifier failure document, exposed for
// hosts that surface lockout state in an admin view.
type LoginAttemptRecord = limiters.Record

// UserStats summarizes an account for profile views.
type UserStats struct {
	Username    string     `json:"username"`
	Role        string     `json:"role"`
	Verified    bool       `json:"verified"`
	LoginCount  int        `json:"login_count"`
	MemberDays  int        `json:"member_days"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}
