package pgstore

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenops/authcore/session"
)

func newSessionsMock(t *testing.T) (*Sessions, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSessions(db), mock
}

func TestSessionsCreate(t *testing.T) {
	store, mock := newSessionsMock(t)

	mock.ExpectQuery("INSERT INTO sessions (user_id, refresh_token) VALUES ($1, $2) RETURNING id").
		WithArgs(int64(7), "tok-abc").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(101)))

	sess, err := store.Create(context.Background(), "7", "tok-abc")
	require.NoError(t, err)
	assert.Equal(t, "101", sess.ID)
	assert.Equal(t, "7", sess.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionsFindMissing(t *testing.T) {
	store, mock := newSessionsMock(t)

	mock.ExpectQuery("SELECT id FROM sessions WHERE user_id = $1 AND refresh_token = $2").
		WithArgs(int64(7), "tok-gone").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.Find(context.Background(), "7", "tok-gone")
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionsRotate(t *testing.T) {
	store, mock := newSessionsMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM sessions WHERE user_id = $1 AND refresh_token = $2").
		WithArgs(int64(7), "tok-old").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO sessions (user_id, refresh_token) VALUES ($1, $2) RETURNING id").
		WithArgs(int64(7), "tok-new").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(102)))
	mock.ExpectCommit()

	sess, err := store.Rotate(context.Background(), "7", "tok-old", "tok-new")
	require.NoError(t, err)
	assert.Equal(t, "tok-new", sess.Token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionsRotateSpentToken(t *testing.T) {
	store, mock := newSessionsMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM sessions WHERE user_id = $1 AND refresh_token = $2").
		WithArgs(int64(7), "tok-old").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := store.Rotate(context.Background(), "7", "tok-old", "tok-new")
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionsRevoke(t *testing.T) {
	store, mock := newSessionsMock(t)

	mock.ExpectExec("DELETE FROM sessions WHERE user_id = $1 AND refresh_token = $2").
		WithArgs(int64(7), "tok-abc").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Revoke(context.Background(), &session.Session{ID: "101", UserID: "7", Token: "tok-abc"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionsRevokeAllForUser(t *testing.T) {
	store, mock := newSessionsMock(t)

	mock.ExpectExec("DELETE FROM sessions WHERE user_id = $1").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := store.RevokeAllForUser(context.Background(), "7")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionsBadUserID(t *testing.T) {
	store, _ := newSessionsMock(t)

	_, err := store.Create(context.Background(), "not-a-number", "tok")
	assert.ErrorIs(t, err, session.ErrUnavailable)
}
