package authcore

import "errors"

var (
	// ErrUserNotFound is returned when no account matches the supplied
	// name or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the password does not match
	// the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRefreshToken is returned when no session holds the
	// presented token for that user, including the loser of a rotation
	// race and any token that was already redeemed.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrAmbiguousCredential is returned when a request does not carry
	// exactly one identifier (name or email) and exactly one proof
	// (password or refresh token).
	ErrAmbiguousCredential = errors.New("ambiguous credential")
	// ErrDuplicateUser is returned when registration collides with an
	// existing name, email, or UUID.
	ErrDuplicateUser = errors.New("user already exists")
	// ErrStorageFailure wraps backend failures from the user provider or
	// session store.
	ErrStorageFailure = errors.New("storage failure")
	// ErrKeyLoadFailure wraps signing key material that cannot be read
	// or parsed. It is fatal: the engine refuses to build without keys.
	ErrKeyLoadFailure = errors.New("signing key load failure")
	// ErrLoginRateLimited is returned when the login attempt budget for
	// the identifier or client IP is exhausted.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRefreshRateLimited is returned when the refresh attempt budget
	// for the user is exhausted.
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	// ErrTokenInvalid is returned for access tokens that fail signature,
	// claim, or lifetime validation.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrRegistrationDisabled is returned by Register when account
	// creation is switched off in config.
	ErrRegistrationDisabled = errors.New("registration disabled")
	// ErrEngineNotReady is returned when an Engine method is called on a
	// partially constructed engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
