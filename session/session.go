package session

import (
	"context"
	"errors"
)

// Session represents one issued refresh token: a storage handle, the owning
// user's storage key, and the opaque token string. At most one session row
// exists per (user, token) pair; a user may hold any number of concurrent
// sessions.
type Session struct {
	ID     string
	UserID string
	Token  string
}

// ErrNotFound is returned when no session matches the (user, token) pair.
// During rotation it is also the outcome observed by the loser of a race:
// the winning request already consumed the token.
var ErrNotFound = errors.New("session not found")

// ErrUnavailable wraps backend failures so callers can separate
// infrastructure trouble from a plain miss.
var ErrUnavailable = errors.New("session store unavailable")

// Store is the refresh-token persistence capability. The engine never
// mutates session rows directly; every mutation goes through a Store.
//
// Find must match on user AND token (exact, case-sensitive), never on the
// token alone, so a token leaked from one account cannot be redeemed
// against another.
//
// Rotate atomically revokes the session matching (userID, oldToken) and
// creates its replacement holding newToken. The old token must be invalid
// before the new one exists; when two rotations race on the same token, at
// most one succeeds and the other observes [ErrNotFound].
type Store interface {
	Create(ctx context.Context, userID, token string) (*Session, error)
	Find(ctx context.Context, userID, token string) (*Session, error)
	Rotate(ctx context.Context, userID, oldToken, newToken string) (*Session, error)
	Revoke(ctx context.Context, sess *Session) error
	RevokeAllForUser(ctx context.Context, userID string) error
}
