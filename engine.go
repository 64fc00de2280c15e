package authcore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/tokenops/authcore/internal/rate"
	"github.com/tokenops/authcore/password"
	"github.com/tokenops/authcore/session"
	"github.com/tokenops/authcore/token"
)

// Engine is the credential issuance and rotation core. It verifies
// passwords, mints and validates RS256 access tokens, and drives the
// refresh-token session lifecycle through a [session.Store].
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
type Engine struct {
	config       Config
	userProvider UserProvider
	sessions     session.Store
	rateLimiter  *rate.Limiter
	audit        *auditDispatcher
	metrics      *Metrics
	passwordHash password.Hasher
	tokens       *token.Manager
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were dropped because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a deep copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Authenticate is the single-call entry point: it inspects req and
// dispatches to [Engine.Login] or [Engine.Refresh]. The request must carry
// exactly one identifier (Name or Email) and exactly one proof (Password
// or RefreshToken); anything else is [ErrAmbiguousCredential], decided
// before any storage lookup.
func (e *Engine) Authenticate(ctx context.Context, req CredentialRequest) (*TokenPair, error) {
	if (req.Password == "") == (req.RefreshToken == "") {
		return nil, ErrAmbiguousCredential
	}

	id := Identifier{Name: req.Name, Email: req.Email}
	if err := id.validate(); err != nil {
		return nil, err
	}

	if req.Password != "" {
		return e.Login(ctx, id, req.Password)
	}
	return e.Refresh(ctx, id, req.RefreshToken)
}

// Login verifies the password for the identified account and, on success,
// creates a fresh refresh-token session and mints an access token.
func (e *Engine) Login(ctx context.Context, id Identifier, plainPassword string) (*TokenPair, error) {
	if e == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}
	if err := id.validate(); err != nil {
		return nil, err
	}

	identifier := id.value()
	ip := clientIPFromContext(ctx)

	if e.rateLimiter != nil {
		if err := e.rateLimiter.CheckLogin(ctx, identifier, ip); err != nil {
			return nil, e.loginRateLimited(ctx, identifier, "")
		}
	}
	if plainPassword == "" {
		return nil, e.loginFailure(ctx, identifier, ip, "", "empty_password", ErrInvalidCredentials)
	}

	user, err := e.lookupUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, e.loginFailure(ctx, identifier, ip, "", "user_not_found", ErrUserNotFound)
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
				"reason":     "provider_failure",
			}
		})
		return nil, err
	}

	ok, err := e.passwordHash.Verify(plainPassword, user.PasswordHash)
	if err != nil || !ok {
		return nil, e.loginFailure(ctx, identifier, ip, user.UUID, "password_mismatch", ErrInvalidCredentials)
	}
	plainPassword = ""

	pair, err := e.issueTokens(ctx, user)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.UUID, err, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
				"reason":     "issue_failed",
			}
		})
		return nil, err
	}

	if e.rateLimiter != nil {
		// Limiter reset is best-effort and must not block successful login.
		if err := e.rateLimiter.ResetLogin(ctx, identifier, ip); err != nil {
			log.Print("authcore: login limiter reset failed")
		}
	}

	e.metricInc(MetricSessionCreated)
	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.UUID, nil, func() map[string]string {
		return map[string]string{
			"identifier": identifier,
		}
	})

	return pair, nil
}

// Refresh redeems a refresh token for the identified account. The spent
// token is revoked and replaced atomically; the access token is minted
// only after the rotation committed. A token that was already redeemed,
// never issued, or issued to a different user yields
// [ErrInvalidRefreshToken].
func (e *Engine) Refresh(ctx context.Context, id Identifier, refreshToken string) (*TokenPair, error) {
	if e == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}
	if err := id.validate(); err != nil {
		return nil, err
	}

	identifier := id.value()

	user, err := e.lookupUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricRefreshFailure)
			e.emitAudit(ctx, auditEventRefreshInvalid, false, "", ErrUserNotFound, func() map[string]string {
				return map[string]string{
					"identifier": identifier,
					"reason":     "user_not_found",
				}
			})
			return nil, ErrUserNotFound
		}
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", err, func() map[string]string {
			return map[string]string{
				"identifier": identifier,
				"reason":     "provider_failure",
			}
		})
		return nil, err
	}

	userID := storageKey(user)

	if e.rateLimiter != nil {
		if err := e.rateLimiter.CheckRefresh(ctx, userID); err != nil {
			e.metricInc(MetricRefreshRateLimited)
			e.emitAudit(ctx, auditEventRefreshRateLimited, false, user.UUID, ErrRefreshRateLimited, nil)
			return nil, ErrRefreshRateLimited
		}
	}

	if refreshToken == "" {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, user.UUID, ErrInvalidRefreshToken, func() map[string]string {
			return map[string]string{
				"reason": "empty_token",
			}
		})
		return nil, ErrInvalidRefreshToken
	}

	nextToken, err := session.NewToken()
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, user.UUID, err, func() map[string]string {
			return map[string]string{
				"reason": "token_generation",
			}
		})
		return nil, err
	}

	if _, err := e.sessions.Rotate(ctx, userID, refreshToken, nextToken); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			e.metricInc(MetricRefreshFailure)
			e.emitAudit(ctx, auditEventRefreshInvalid, false, user.UUID, ErrInvalidRefreshToken, func() map[string]string {
				return map[string]string{
					"reason": "token_not_found",
				}
			})
			return nil, ErrInvalidRefreshToken
		}
		e.metricInc(MetricRefreshFailure)
		wrapped := mapSessionErr(err)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, user.UUID, wrapped, func() map[string]string {
			return map[string]string{
				"reason": "rotate_failed",
			}
		})
		return nil, wrapped
	}

	access, err := e.tokens.Mint(token.Subject{
		UUID:  user.UUID,
		Name:  user.Name,
		Email: user.Email,
	})
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, user.UUID, err, func() map[string]string {
			return map[string]string{
				"reason": "mint_failed",
			}
		})
		return nil, err
	}

	e.metricInc(MetricSessionRevoked)
	e.metricInc(MetricSessionCreated)
	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, user.UUID, nil, nil)

	return &TokenPair{AccessToken: access, RefreshToken: nextToken}, nil
}

// ValidateAccess checks the token's signature and lifetime and returns the
// identity claims it carries. Validation is pure: no storage is consulted,
// so a revoked session does not invalidate access tokens already minted.
func (e *Engine) ValidateAccess(tokenStr string) (*AuthResult, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricValidateLatency, time.Since(start)) }()
	}

	claims, err := e.tokens.Parse(tokenStr)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	res := &AuthResult{
		UserUUID:  claims.UserUUID,
		UserName:  claims.UserName,
		UserEmail: claims.UserEmail,
	}
	if claims.ExpiresAt != nil {
		res.ExpiresAt = claims.ExpiresAt.Time
	}

	return res, nil
}

// Validate is the boolean projection of [Engine.ValidateAccess].
func (e *Engine) Validate(tokenStr string) bool {
	_, err := e.ValidateAccess(tokenStr)
	return err == nil
}

// Logout revokes the single session matching the identified account and
// refresh token. Unknown tokens yield [ErrInvalidRefreshToken].
func (e *Engine) Logout(ctx context.Context, id Identifier, refreshToken string) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}
	if err := id.validate(); err != nil {
		return err
	}

	user, err := e.lookupUser(ctx, id)
	if err != nil {
		e.emitAudit(ctx, auditEventLogoutSession, false, "", err, nil)
		return err
	}

	sess, err := e.sessions.Find(ctx, storageKey(user), refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			e.emitAudit(ctx, auditEventLogoutSession, false, user.UUID, ErrInvalidRefreshToken, nil)
			return ErrInvalidRefreshToken
		}
		wrapped := mapSessionErr(err)
		e.emitAudit(ctx, auditEventLogoutSession, false, user.UUID, wrapped, nil)
		return wrapped
	}

	if err := e.sessions.Revoke(ctx, sess); err != nil {
		wrapped := mapSessionErr(err)
		e.emitAudit(ctx, auditEventLogoutSession, false, user.UUID, wrapped, nil)
		return wrapped
	}

	e.metricInc(MetricLogout)
	e.metricInc(MetricSessionRevoked)
	e.emitAudit(ctx, auditEventLogoutSession, true, user.UUID, nil, nil)
	return nil
}

// LogoutAll revokes every session of the identified account.
func (e *Engine) LogoutAll(ctx context.Context, id Identifier) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}
	if err := id.validate(); err != nil {
		return err
	}

	user, err := e.lookupUser(ctx, id)
	if err != nil {
		e.emitAudit(ctx, auditEventLogoutAll, false, "", err, nil)
		return err
	}

	if err := e.sessions.RevokeAllForUser(ctx, storageKey(user)); err != nil {
		wrapped := mapSessionErr(err)
		e.emitAudit(ctx, auditEventLogoutAll, false, user.UUID, wrapped, nil)
		return wrapped
	}

	e.metricInc(MetricLogoutAll)
	e.metricInc(MetricSessionRevoked)
	e.emitAudit(ctx, auditEventLogoutAll, true, user.UUID, nil, nil)
	return nil
}

func (e *Engine) lookupUser(ctx context.Context, id Identifier) (UserRecord, error) {
	if e.userProvider == nil {
		return UserRecord{}, ErrEngineNotReady
	}
	if id.Name != "" {
		return e.userProvider.GetUserByName(ctx, id.Name)
	}
	return e.userProvider.GetUserByEmail(ctx, id.Email)
}

// issueTokens creates a fresh session and mints its access token. The
// session row is persisted before the access token exists, so a mint
// failure leaves a dormant session rather than an unbacked token.
func (e *Engine) issueTokens(ctx context.Context, user UserRecord) (*TokenPair, error) {
	refreshToken, err := session.NewToken()
	if err != nil {
		return nil, err
	}

	if _, err := e.sessions.Create(ctx, storageKey(user), refreshToken); err != nil {
		return nil, mapSessionErr(err)
	}

	access, err := e.tokens.Mint(token.Subject{
		UUID:  user.UUID,
		Name:  user.Name,
		Email: user.Email,
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

func (e *Engine) loginRateLimited(ctx context.Context, identifier, userUUID string) error {
	e.metricInc(MetricLoginRateLimited)
	e.emitAudit(ctx, auditEventLoginRateLimited, false, userUUID, ErrLoginRateLimited, func() map[string]string {
		return map[string]string{
			"identifier": identifier,
		}
	})
	return ErrLoginRateLimited
}

func (e *Engine) loginFailure(ctx context.Context, identifier, ip, userUUID, reason string, cause error) error {
	if e.rateLimiter != nil {
		if err := e.rateLimiter.IncrementLogin(ctx, identifier, ip); err != nil {
			return e.loginRateLimited(ctx, identifier, userUUID)
		}
	}
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, userUUID, cause, func() map[string]string {
		return map[string]string{
			"identifier": identifier,
			"reason":     reason,
		}
	})
	return cause
}

func storageKey(user UserRecord) string {
	return strconv.FormatInt(user.ID, 10)
}

func mapSessionErr(err error) error {
	if errors.Is(err, session.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return err
}
