package authcore

import (
	"context"
	"time"
)

// Identifier names an account by exactly one of Name or Email. Setting
// both, or neither, is rejected with [ErrAmbiguousCredential] before any
// storage lookup happens.
type Identifier struct {
	Name  string
	Email string
}

func (id Identifier) validate() error {
	if (id.Name == "") == (id.Email == "") {
		return ErrAmbiguousCredential
	}
	return nil
}

// value returns the populated identifier field. Valid only after validate.
func (id Identifier) value() string {
	if id.Name != "" {
		return id.Name
	}
	return id.Email
}

// UserRecord is the account row returned by a [UserProvider]. ID is the
// provider's storage key; UUID is the stable public identity that appears
// in access-token claims.
type UserRecord struct {
	ID           int64
	UUID         string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// CreateUserInput is the input for [UserProvider.CreateUser]. The engine
// supplies a fresh UUID and a finished password hash; providers never see
// plaintext passwords.
type CreateUserInput struct {
	UUID         string
	Name         string
	Email        string
	PasswordHash string
}

// UserProvider is the interface callers implement to plug their user
// database into the engine. Lookups return [ErrUserNotFound] for missing
// accounts; CreateUser returns [ErrDuplicateUser] when the name, email, or
// UUID collides with an existing row. Any other failure should wrap
// [ErrStorageFailure].
type UserProvider interface {
	GetUserByName(ctx context.Context, name string) (UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	GetUserByUUID(ctx context.Context, uuid string) (UserRecord, error)
	CreateUser(ctx context.Context, input CreateUserInput) (UserRecord, error)
}

// TokenPair is the result of a successful login, refresh, or auto-login
// registration: a signed JWT access token and an opaque refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// CredentialRequest is the single-call authentication input accepted by
// [Engine.Authenticate]. Exactly one of Name or Email and exactly one of
// Password or RefreshToken must be set.
type CredentialRequest struct {
	Name         string
	Email        string
	Password     string
	RefreshToken string
}

// RegisterRequest is the input for [Engine.Register].
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// RegisterResult is returned by [Engine.Register]. Tokens is non-nil only
// when [AccountConfig.AutoLogin] is enabled.
type RegisterResult struct {
	UUID   string
	Tokens *TokenPair
}

// AuthResult is the decoded identity behind a valid access token,
// returned by [Engine.ValidateAccess].
type AuthResult struct {
	UserUUID  string
	UserName  string
	UserEmail string
	ExpiresAt time.Time
}
