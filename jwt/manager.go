// Package jwt encodes a session as a signed token so hosts can thread the
// authenticated principal through stateless transports. Verification is
// purely cryptographic; the engine keeps no server-side token state.
package jwt

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/caremesh/authcore/session"
)

// SigningMethod selects the token signature algorithm.
type SigningMethod string

const (
	// MethodEd25519 signs with an ed25519 private key (default).
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 signs with a shared HMAC secret.
	MethodHS256 SigningMethod = "hs256"
)

// Config holds token signing configuration. A TTL of zero issues tokens
// without an expiry claim; session lifetime is then entirely the host's
// concern, matching the engine's no-server-side-expiry design.
type Config struct {
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	TTL           time.Duration
	Issuer        string
}

// Manager signs and parses session tokens.
type Manager struct {
	config Config
}

// SessionClaims is the JWT claim set carrying the session principal.
type SessionClaims struct {
	SID       string `json:"sid"`
	Username  string `json:"username"`
	Role      string `json:"role,omitempty"`
	Email     string `json:"email,omitempty"`
	LoginTime int64  `json:"login_time"`
	jwt.RegisteredClaims
}

var (
	// ErrTokenInvalid is returned when a token fails signature or claim checks.
	ErrTokenInvalid = errors.New("invalid session token")
)

// NewManager validates cfg and returns a ready manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.TTL < 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) != ed25519.PrivateKeySize {
			return nil, errors.New("ed25519 requires a 64-byte private key")
		}
		if len(cfg.PublicKey) != ed25519.PublicKeySize {
			return nil, errors.New("ed25519 requires a 32-byte public key")
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Manager{config: cfg}, nil
}

// Issue signs the session into a compact token.
func (m *Manager) Issue(s *session.Session) (string, error) {
	if s == nil || !s.Authenticated {
		return "", errors.New("cannot issue token for unauthenticated session")
	}

	now := time.Now()
	claims := SessionClaims{
		SID:       s.ID,
		Username:  s.Username,
		Role:      s.Role,
		Email:     s.Email,
		LoginTime: s.LoginTime.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   m.config.Issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.config.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.config.TTL))
	}

	switch m.config.SigningMethod {
	case MethodHS256:
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		return token.SignedString(m.config.PrivateKey)
	case MethodEd25519:
		token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
		return token.SignedString(ed25519.PrivateKey(m.config.PrivateKey))
	default:
		return "", errors.New("unsupported signing method")
	}
}

// Parse verifies tokenString and reconstructs the session it carries.
func (m *Manager) Parse(tokenString string) (*session.Session, error) {
	claims := &SessionClaims{}

	var (
		key     any
		methods []string
	)
	switch m.config.SigningMethod {
	case MethodHS256:
		key = m.config.PrivateKey
		methods = []string{jwt.SigningMethodHS256.Alg()}
	case MethodEd25519:
		key = ed25519.PublicKey(m.config.PublicKey)
		methods = []string{jwt.SigningMethodEdDSA.Alg()}
	default:
		return nil, errors.New("unsupported signing method")
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods(methods))
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.SID == "" || claims.Username == "" {
		return nil, ErrTokenInvalid
	}

	return &session.Session{
		ID:            claims.SID,
		Authenticated: true,
		Username:      claims.Username,
		Role:          claims.Role,
		Email:         claims.Email,
		LoginTime:     time.Unix(claims.LoginTime, 0).UTC(),
	}, nil
}
