package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/tokenops/authcore/session"
)

// Sessions implements session.Store on the sessions table.
type Sessions struct {
	db *sql.DB
}

// NewSessions creates a [Sessions] store over db.
func NewSessions(db *sql.DB) *Sessions {
	return &Sessions{db: db}
}

func parseUserID(userID string) (int64, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad user id %q", session.ErrUnavailable, userID)
	}
	return id, nil
}

// Create inserts a session row for userID holding token.
func (s *Sessions) Create(ctx context.Context, userID, token string) (*session.Session, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	var id int64
	row := s.db.QueryRowContext(ctx,
		"INSERT INTO sessions (user_id, refresh_token) VALUES ($1, $2) RETURNING id",
		uid, token,
	)
	if err := row.Scan(&id); err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrUnavailable, err)
	}

	return &session.Session{ID: strconv.FormatInt(id, 10), UserID: userID, Token: token}, nil
}

// Find returns the session matching (userID, token), or
// session.ErrNotFound.
func (s *Sessions) Find(ctx context.Context, userID, token string) (*session.Session, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	var id int64
	row := s.db.QueryRowContext(ctx,
		"SELECT id FROM sessions WHERE user_id = $1 AND refresh_token = $2",
		uid, token,
	)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", session.ErrUnavailable, err)
	}

	return &session.Session{ID: strconv.FormatInt(id, 10), UserID: userID, Token: token}, nil
}

// Rotate deletes the row holding oldToken and inserts newToken in one
// transaction. When the delete matches no row, the token was already spent
// or never issued and the caller gets session.ErrNotFound; concurrent
// redemptions serialize on the row lock, so at most one commits.
func (s *Sessions) Rotate(ctx context.Context, userID, oldToken, newToken string) (*session.Session, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id = $1 AND refresh_token = $2",
		uid, oldToken,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrUnavailable, err)
	}
	if affected == 0 {
		return nil, session.ErrNotFound
	}

	var id int64
	row := tx.QueryRowContext(ctx,
		"INSERT INTO sessions (user_id, refresh_token) VALUES ($1, $2) RETURNING id",
		uid, newToken,
	)
	if err := row.Scan(&id); err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrUnavailable, err)
	}

	return &session.Session{ID: strconv.FormatInt(id, 10), UserID: userID, Token: newToken}, nil
}

// Revoke deletes the session row. Deleting an already-deleted row is a
// no-op.
func (s *Sessions) Revoke(ctx context.Context, sess *session.Session) error {
	uid, err := parseUserID(sess.UserID)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id = $1 AND refresh_token = $2",
		uid, sess.Token,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrUnavailable, err)
	}
	return nil
}

// RevokeAllForUser deletes every session row of userID.
func (s *Sessions) RevokeAllForUser(ctx context.Context, userID string) error {
	uid, err := parseUserID(userID)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, "DELETE FROM sessions WHERE user_id = $1", uid)
	if err != nil {
		return fmt.Errorf("%w: %v", session.ErrUnavailable, err)
	}
	return nil
}
