package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tokenops/authcore"
)

const uniqueViolation = "23505"

// Users implements authcore.UserProvider on the users table.
type Users struct {
	db *sql.DB
}

// NewUsers creates a [Users] provider over db.
func NewUsers(db *sql.DB) *Users {
	return &Users{db: db}
}

const userColumns = "id, uuid, name, email, password, created_at"

func (u *Users) getUserBy(ctx context.Context, column, value string) (authcore.UserRecord, error) {
	var rec authcore.UserRecord

	query := fmt.Sprintf("SELECT %s FROM users WHERE %s = $1", userColumns, column)
	row := u.db.QueryRowContext(ctx, query, value)
	err := row.Scan(&rec.ID, &rec.UUID, &rec.Name, &rec.Email, &rec.PasswordHash, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return authcore.UserRecord{}, authcore.ErrUserNotFound
		}
		return authcore.UserRecord{}, fmt.Errorf("%w: %v", authcore.ErrStorageFailure, err)
	}

	return rec, nil
}

// GetUserByName looks up an account by its unique name.
func (u *Users) GetUserByName(ctx context.Context, name string) (authcore.UserRecord, error) {
	return u.getUserBy(ctx, "name", name)
}

// GetUserByEmail looks up an account by its unique email.
func (u *Users) GetUserByEmail(ctx context.Context, email string) (authcore.UserRecord, error) {
	return u.getUserBy(ctx, "email", email)
}

// GetUserByUUID looks up an account by its public UUID.
func (u *Users) GetUserByUUID(ctx context.Context, uuid string) (authcore.UserRecord, error) {
	return u.getUserBy(ctx, "uuid", uuid)
}

// CreateUser inserts a new account row. A collision on uuid, name, or
// email yields authcore.ErrDuplicateUser.
func (u *Users) CreateUser(ctx context.Context, input authcore.CreateUserInput) (authcore.UserRecord, error) {
	rec := authcore.UserRecord{
		UUID:         input.UUID,
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
	}

	row := u.db.QueryRowContext(ctx,
		"INSERT INTO users (uuid, name, email, password) VALUES ($1, $2, $3, $4) RETURNING id, created_at",
		input.UUID, input.Name, input.Email, input.PasswordHash,
	)
	if err := row.Scan(&rec.ID, &rec.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return authcore.UserRecord{}, authcore.ErrDuplicateUser
		}
		return authcore.UserRecord{}, fmt.Errorf("%w: %v", authcore.ErrStorageFailure, err)
	}

	return rec, nil
}
