package authcore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tokenops/authcore/session"
)

// noopSessions satisfies session.Store for builder tests that never touch
// session storage.
type noopSessions struct{}

func (noopSessions) Create(context.Context, string, string) (*session.Session, error) {
	return nil, session.ErrUnavailable
}

func (noopSessions) Find(context.Context, string, string) (*session.Session, error) {
	return nil, session.ErrNotFound
}

func (noopSessions) Rotate(context.Context, string, string, string) (*session.Session, error) {
	return nil, session.ErrNotFound
}

func (noopSessions) Revoke(context.Context, *session.Session) error { return nil }

func (noopSessions) RevokeAllForUser(context.Context, string) error { return nil }

func validTestConfig(t *testing.T) Config {
	t.Helper()
	privatePEM, publicPEM := testKeys(t)

	cfg := DefaultConfig()
	cfg.JWT.PrivateKeyPEM = privatePEM
	cfg.JWT.PublicKeyPEM = publicPEM
	return cfg
}

func TestDefaultConfigValidatesWithKeys(t *testing.T) {
	cfg := validTestConfig(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config with keys must validate: %v", err)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(cfg *Config)
		wantMsg string
	}{
		{"zero access TTL", func(c *Config) { c.JWT.AccessTTL = 0 }, "AccessTTL"},
		{"negative leeway", func(c *Config) { c.JWT.Leeway = -time.Second }, "Leeway"},
		{"excessive leeway", func(c *Config) { c.JWT.Leeway = 3 * time.Minute }, "Leeway"},
		{"missing private key", func(c *Config) { c.JWT.PrivateKeyPEM = nil }, "private key"},
		{"missing public key", func(c *Config) { c.JWT.PublicKeyPEM = nil }, "public key"},
		{"weak argon memory", func(c *Config) { c.Password.Memory = 1024 }, "Memory"},
		{"zero argon time", func(c *Config) { c.Password.Time = 0 }, "Time"},
		{"zero parallelism", func(c *Config) { c.Password.Parallelism = 0 }, "Parallelism"},
		{"short salt", func(c *Config) { c.Password.SaltLength = 8 }, "SaltLength"},
		{"short key", func(c *Config) { c.Password.KeyLength = 8 }, "KeyLength"},
		{"zero login attempts", func(c *Config) { c.Security.MaxLoginAttempts = 0 }, "MaxLoginAttempts"},
		{"zero login cooldown", func(c *Config) { c.Security.LoginCooldownDuration = 0 }, "LoginCooldownDuration"},
		{"refresh throttle without budget", func(c *Config) {
			c.Security.EnableRefreshThrottle = true
			c.Security.MaxRefreshAttempts = 0
		}, "MaxRefreshAttempts"},
		{"audit without buffer", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}, "BufferSize"},
	}

	for _, tc := range cases {
		cfg := validTestConfig(t)
		tc.mutate(&cfg)

		err := cfg.Validate()
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.wantMsg) {
			t.Fatalf("%s: err = %v, want mention of %q", tc.name, err, tc.wantMsg)
		}
	}
}

func TestConfigLeewayAtBoundary(t *testing.T) {
	cfg := validTestConfig(t)
	cfg.JWT.Leeway = 2 * time.Minute
	if err := cfg.Validate(); err != nil {
		t.Fatalf("2m leeway is the inclusive maximum: %v", err)
	}
}

func TestCloneConfigDeepCopiesKeys(t *testing.T) {
	cfg := validTestConfig(t)
	clone := cloneConfig(cfg)

	clone.JWT.PrivateKeyPEM[0] ^= 0xFF
	if cfg.JWT.PrivateKeyPEM[0] == clone.JWT.PrivateKeyPEM[0] {
		t.Fatal("clone must not share key material with the source")
	}
}

func TestBuilderRequiresUserProvider(t *testing.T) {
	cfg := validTestConfig(t)
	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected error without user provider")
	}
}

func TestBuilderRequiresStoreOrRedis(t *testing.T) {
	cfg := validTestConfig(t)
	_, err := New().WithConfig(cfg).WithUserProvider(newMemoryUsers()).Build()
	if err == nil {
		t.Fatal("expected error without a session backend")
	}
}

func TestBuilderRejectsBadKeyMaterial(t *testing.T) {
	cfg := validTestConfig(t)
	cfg.JWT.PrivateKeyPEM = []byte("not a pem")

	_, err := New().
		WithConfig(cfg).
		WithUserProvider(newMemoryUsers()).
		WithSessionStore(noopSessions{}).
		Build()
	if err == nil {
		t.Fatal("expected key load failure")
	}
	if !errors.Is(err, ErrKeyLoadFailure) {
		t.Fatalf("err = %v, want wrap of ErrKeyLoadFailure", err)
	}
}

func TestBuilderMissingKeyFilesFatal(t *testing.T) {
	cfg := validTestConfig(t)
	cfg.JWT.PrivateKeyPEM = nil
	cfg.JWT.PublicKeyPEM = nil
	cfg.JWT.PrivateKeyPath = "/nonexistent/private.pem"
	cfg.JWT.PublicKeyPath = "/nonexistent/public.pem"

	_, err := New().
		WithConfig(cfg).
		WithUserProvider(newMemoryUsers()).
		WithSessionStore(noopSessions{}).
		Build()
	if err == nil {
		t.Fatal("expected key load failure for missing files")
	}
	if !errors.Is(err, ErrKeyLoadFailure) {
		t.Fatalf("err = %v, want wrap of ErrKeyLoadFailure", err)
	}
}

func TestBuilderSingleUse(t *testing.T) {
	cfg := validTestConfig(t)
	b := New().
		WithConfig(cfg).
		WithUserProvider(newMemoryUsers()).
		WithSessionStore(noopSessions{})

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("second build on the same builder must fail")
	}
}
