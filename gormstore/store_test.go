package gormstore

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tokenops/authcore"
	"github.com/tokenops/authcore/session"
)

func newStoreMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewStore(gdb), mock
}

func TestGetUserByName(t *testing.T) {
	store, mock := newStoreMock(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE name = \$1`).
		WithArgs("alice", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "name", "email", "password"}).
			AddRow(int64(7), "u-1", "alice", "alice@example.com", "$argon2id$hash"))

	rec, err := store.GetUserByName(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, "u-1", rec.UUID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmailNotFound(t *testing.T) {
	store, mock := newStoreMock(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WithArgs("ghost@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetUserByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, authcore.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRotateCompareAndSwap(t *testing.T) {
	store, mock := newStoreMock(t)

	mock.ExpectExec(`UPDATE "users" SET "refresh_token"=\$1 WHERE id = \$2 AND refresh_token = \$3`).
		WithArgs("tok-new", int64(7), "tok-old").
		WillReturnResult(sqlmock.NewResult(0, 1))

	sess, err := store.Rotate(context.Background(), "7", "tok-old", "tok-new")
	require.NoError(t, err)
	assert.Equal(t, "tok-new", sess.Token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRotateLostRace(t *testing.T) {
	store, mock := newStoreMock(t)

	mock.ExpectExec(`UPDATE "users" SET "refresh_token"=\$1 WHERE id = \$2 AND refresh_token = \$3`).
		WithArgs("tok-new", int64(7), "tok-old").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.Rotate(context.Background(), "7", "tok-old", "tok-new")
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDisplacesPreviousSession(t *testing.T) {
	store, mock := newStoreMock(t)

	mock.ExpectExec(`UPDATE "users" SET "refresh_token"=\$1 WHERE id = \$2`).
		WithArgs("tok-abc", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sess, err := store.Create(context.Background(), "7", "tok-abc")
	require.NoError(t, err)
	assert.Equal(t, "7", sess.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindWrongToken(t *testing.T) {
	store, mock := newStoreMock(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE id = \$1 AND refresh_token = \$2`).
		WithArgs(int64(7), "tok-wrong").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))

	_, err := store.Find(context.Background(), "7", "tok-wrong")
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeAllForUser(t *testing.T) {
	store, mock := newStoreMock(t)

	mock.ExpectExec(`UPDATE "users" SET "refresh_token"=\$1 WHERE id = \$2`).
		WithArgs(nil, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.RevokeAllForUser(context.Background(), "7")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
