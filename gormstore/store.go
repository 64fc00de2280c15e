package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tokenops/authcore"
	"github.com/tokenops/authcore/session"
)

// User is the account row. The refresh token lives in a nullable column on
// the user itself, so each account holds at most one session at a time and
// a new login displaces the old session.
type User struct {
	ID           int64   `gorm:"primaryKey"`
	UUID         string  `gorm:"uniqueIndex;not null"`
	Name         string  `gorm:"uniqueIndex;not null"`
	Email        string  `gorm:"uniqueIndex;not null"`
	Password     string  `gorm:"not null"`
	RefreshToken *string `gorm:"type:varchar(32)"`
	CreatedAt    time.Time
}

// Store implements authcore.UserProvider and session.Store on a single
// users table.
type Store struct {
	db *gorm.DB
}

// Open connects to PostgreSQL through gorm and migrates the users table.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		return nil, fmt.Errorf("migrate users: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing gorm handle. The caller is responsible for
// migration.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func toRecord(u User) authcore.UserRecord {
	return authcore.UserRecord{
		ID:           u.ID,
		UUID:         u.UUID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.Password,
		CreatedAt:    u.CreatedAt,
	}
}

func (s *Store) getUserBy(ctx context.Context, query string, value string) (authcore.UserRecord, error) {
	var u User
	err := s.db.WithContext(ctx).Where(query, value).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authcore.UserRecord{}, authcore.ErrUserNotFound
		}
		return authcore.UserRecord{}, fmt.Errorf("%w: %v", authcore.ErrStorageFailure, err)
	}
	return toRecord(u), nil
}

// GetUserByName looks up an account by its unique name.
func (s *Store) GetUserByName(ctx context.Context, name string) (authcore.UserRecord, error) {
	return s.getUserBy(ctx, "name = ?", name)
}

// GetUserByEmail looks up an account by its unique email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (authcore.UserRecord, error) {
	return s.getUserBy(ctx, "email = ?", email)
}

// GetUserByUUID looks up an account by its public UUID.
func (s *Store) GetUserByUUID(ctx context.Context, uuid string) (authcore.UserRecord, error) {
	return s.getUserBy(ctx, "uuid = ?", uuid)
}

// CreateUser inserts a new account row. A unique-index collision yields
// authcore.ErrDuplicateUser.
func (s *Store) CreateUser(ctx context.Context, input authcore.CreateUserInput) (authcore.UserRecord, error) {
	u := User{
		UUID:     input.UUID,
		Name:     input.Name,
		Email:    input.Email,
		Password: input.PasswordHash,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return authcore.UserRecord{}, authcore.ErrDuplicateUser
		}
		return authcore.UserRecord{}, fmt.Errorf("%w: %v", authcore.ErrStorageFailure, err)
	}
	return toRecord(u), nil
}

func parseUserID(userID string) (int64, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad user id %q", session.ErrUnavailable, userID)
	}
	return id, nil
}

// Create stores token as the user's session, displacing any previous one.
func (s *Store) Create(ctx context.Context, userID, token string) (*session.Session, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", uid).
		Update("refresh_token", token)
	if res.Error != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: user %s missing", session.ErrUnavailable, userID)
	}

	return &session.Session{ID: userID, UserID: userID, Token: token}, nil
}

// Find returns the session only when the user currently holds token.
func (s *Store) Find(ctx context.Context, userID, token string) (*session.Session, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND refresh_token = ?", uid, token).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrUnavailable, err)
	}
	if count == 0 {
		return nil, session.ErrNotFound
	}

	return &session.Session{ID: userID, UserID: userID, Token: token}, nil
}

// Rotate swaps oldToken for newToken with a single guarded UPDATE. The
// guard makes the swap atomic: a racing request whose token was already
// displaced matches no row and gets session.ErrNotFound.
func (s *Store) Rotate(ctx context.Context, userID, oldToken, newToken string) (*session.Session, error) {
	uid, err := parseUserID(userID)
	if err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND refresh_token = ?", uid, oldToken).
		Update("refresh_token", newToken)
	if res.Error != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrUnavailable, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, session.ErrNotFound
	}

	return &session.Session{ID: userID, UserID: userID, Token: newToken}, nil
}

// Revoke clears the user's session column when it still holds the token.
func (s *Store) Revoke(ctx context.Context, sess *session.Session) error {
	uid, err := parseUserID(sess.UserID)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND refresh_token = ?", uid, sess.Token).
		Update("refresh_token", nil)
	if res.Error != nil {
		return fmt.Errorf("%w: %v", session.ErrUnavailable, res.Error)
	}
	return nil
}

// RevokeAllForUser clears the user's session column unconditionally.
func (s *Store) RevokeAllForUser(ctx context.Context, userID string) error {
	uid, err := parseUserID(userID)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", uid).
		Update("refresh_token", nil)
	if res.Error != nil {
		return fmt.Errorf("%w: %v", session.ErrUnavailable, res.Error)
	}
	return nil
}
