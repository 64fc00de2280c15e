package authcore

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tokenops/authcore/internal/rate"
	"github.com/tokenops/authcore/password"
	"github.com/tokenops/authcore/session"
	"github.com/tokenops/authcore/token"
)

// Builder assembles an [Engine]. Obtain one with [New], chain the With
// methods, then call [Builder.Build] exactly once.
type Builder struct {
	config Config
	redis  *redis.Client

	userProvider UserProvider
	sessionStore session.Store
	auditSink    AuditSink

	built bool
}

// New returns a [Builder] seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the Redis client used for throttling and, when no
// explicit session store is given, for session persistence.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithUserProvider supplies the account database adapter. Required.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithSessionStore supplies an explicit session store, overriding the
// Redis-backed default. Use this to back sessions with SQL via pgstore or
// gormstore.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.sessionStore = store
	return b
}

// WithAuditSink supplies the audit destination. Has no effect unless
// [AuditConfig.Enabled] is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the validation latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, loads the signing keypair, and wires
// the engine. Key material that cannot be read or parsed is fatal: the
// error wraps [ErrKeyLoadFailure] and no engine is returned.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.userProvider == nil {
		return nil, errors.New("user provider required")
	}

	store := b.sessionStore
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("session store or redis client required")
		}
		store = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix)
	}

	engine := &Engine{
		config:       cfg,
		userProvider: b.userProvider,
		sessions:     store,
	}

	if b.redis != nil {
		engine.rateLimiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle:        cfg.Security.EnableIPThrottle,
			EnableRefreshThrottle:   cfg.Security.EnableRefreshThrottle,
			MaxLoginAttempts:        cfg.Security.MaxLoginAttempts,
			LoginCooldownDuration:   cfg.Security.LoginCooldownDuration,
			MaxRefreshAttempts:      cfg.Security.MaxRefreshAttempts,
			RefreshCooldownDuration: cfg.Security.RefreshCooldownDuration,
		})
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	ph, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}
	engine.passwordHash = ph

	privatePEM := cfg.JWT.PrivateKeyPEM
	publicPEM := cfg.JWT.PublicKeyPEM
	if len(privatePEM) == 0 || len(publicPEM) == 0 {
		privatePEM, publicPEM, err = token.LoadKeyPairFiles(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyLoadFailure, err)
		}
	}

	tm, err := token.NewManager(token.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		Leeway:        cfg.JWT.Leeway,
		PrivateKeyPEM: privatePEM,
		PublicKeyPEM:  publicPEM,
	})
	if err != nil {
		if errors.Is(err, token.ErrKeyMaterial) {
			return nil, fmt.Errorf("%w: %v", ErrKeyLoadFailure, err)
		}
		return nil, err
	}
	engine.tokens = tm

	b.built = true

	return engine, nil
}
