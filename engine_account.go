package authcore

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Register creates a new account: a v4 UUID is assigned, the password is
// hashed, and the row is handed to the [UserProvider]. When
// [AccountConfig.AutoLogin] is enabled the new account also receives a
// token pair, exactly as if it had logged in.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if e == nil || e.passwordHash == nil || e.userProvider == nil {
		return nil, ErrEngineNotReady
	}
	if !e.config.Account.Enabled {
		e.emitAudit(ctx, auditEventAccountCreateFailure, false, "", ErrRegistrationDisabled, func() map[string]string {
			return map[string]string{
				"reason": "feature_disabled",
			}
		})
		return nil, ErrRegistrationDisabled
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		e.emitAudit(ctx, auditEventAccountCreateFailure, false, "", ErrAmbiguousCredential, func() map[string]string {
			return map[string]string{
				"reason": "incomplete_request",
			}
		})
		return nil, ErrAmbiguousCredential
	}

	passwordHash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		e.emitAudit(ctx, auditEventAccountCreateFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"identifier": req.Name,
				"reason":     "hash_failed",
			}
		})
		return nil, err
	}
	req.Password = ""

	created, err := e.userProvider.CreateUser(ctx, CreateUserInput{
		UUID:         uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUser) {
			e.metricInc(MetricAccountDuplicate)
			e.emitAudit(ctx, auditEventAccountDuplicate, false, "", ErrDuplicateUser, func() map[string]string {
				return map[string]string{
					"identifier": req.Name,
				}
			})
			return nil, ErrDuplicateUser
		}
		e.emitAudit(ctx, auditEventAccountCreateFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"identifier": req.Name,
				"reason":     "provider_create_failed",
			}
		})
		return nil, err
	}

	result := &RegisterResult{UUID: created.UUID}

	if e.config.Account.AutoLogin {
		pair, err := e.issueTokens(ctx, created)
		if err != nil {
			// The account exists; only the auto-login failed.
			e.emitAudit(ctx, auditEventAccountCreated, false, created.UUID, err, func() map[string]string {
				return map[string]string{
					"identifier": req.Name,
					"reason":     "auto_login_failed",
				}
			})
			return result, err
		}
		result.Tokens = pair
		e.metricInc(MetricSessionCreated)
	}

	e.metricInc(MetricAccountCreated)
	e.emitAudit(ctx, auditEventAccountCreated, true, created.UUID, nil, func() map[string]string {
		return map[string]string{
			"identifier": req.Name,
		}
	})
	return result, nil
}
