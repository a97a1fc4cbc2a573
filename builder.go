package authcore

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/caremesh/authcore/internal/limiters"
	"github.com/caremesh/authcore/internal/stores"
	"github.com/caremesh/authcore/jwt"
	"github.com/caremesh/authcore/password"
)

// Builder assembles an Engine. Collaborators without a WithX call take the
// defaults from DefaultConfig.
type Builder struct {
	config      Config
	redis       redis.UniversalClient
	credentials CredentialStore
	hasher      password.Hasher
	sink        AuditSink
}

// New starts a builder with the default configuration.
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the Redis client backing attempt tracking and OTP storage.
// The client stays caller-owned.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithCredentials sets the host's credential store.
func (b *Builder) WithCredentials(store CredentialStore) *Builder {
	b.credentials = store
	return b
}

// WithHasher overrides the configured password hasher. Use it to plug in a
// scheme the Password config does not cover.
func (b *Builder) WithHasher(h password.Hasher) *Builder {
	b.hasher = h
	return b
}

// WithAuditSink enables auditing into sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled turns on counter collection.
func (b *Builder) WithMetricsEnabled() *Builder {
	b.config.Metrics.Enabled = true
	return b
}

// Build validates the configuration and wires the engine.
func (b *Builder) Build() (*Engine, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.redis == nil {
		return nil, fmt.Errorf("%w: redis client is required", ErrEngineNotReady)
	}
	if b.credentials == nil {
		return nil, fmt.Errorf("%w: credential store is required", ErrEngineNotReady)
	}

	hasher := b.hasher
	if hasher == nil {
		var err error
		switch b.config.Password.Algorithm {
		case HashSHA256:
			hasher = password.NewSHA256()
		default:
			hasher, err = password.NewArgon2(b.config.Password.Argon2)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrEngineNotReady, err)
			}
		}
	}

	var tokens *jwt.Manager
	if b.config.SessionToken.Enabled {
		manager, err := jwt.NewManager(jwt.Config{
			SigningMethod: b.config.SessionToken.SigningMethod,
			PrivateKey:    b.config.SessionToken.PrivateKey,
			PublicKey:     b.config.SessionToken.PublicKey,
			TTL:           b.config.SessionToken.TTL,
			Issuer:        b.config.SessionToken.Issuer,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEngineNotReady, err)
		}
		tokens = manager
	}

	var dispatcher *auditDispatcher
	if b.config.Audit.Enabled {
		sink := b.sink
		if sink == nil {
			sink = NoOpSink{}
		}
		dispatcher = newAuditDispatcher(sink, b.config.Audit.BufferSize)
	}

	return &Engine{
		config:      b.config,
		redis:       b.redis,
		credentials: b.credentials,
		hasher:      hasher,
		lockout:     limiters.NewLockout(b.redis, b.config.RedisPrefix, b.config.lockoutConfig()),
		otp:         stores.NewOTP(b.redis, b.config.RedisPrefix, b.config.otpConfig()),
		tokens:      tokens,
		audit:       dispatcher,
		metrics:     NewMetrics(b.config.Metrics),
		now:         time.Now,
	}, nil
}
