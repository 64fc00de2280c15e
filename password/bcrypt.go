package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt is the compatibility hasher for deployments whose stored hashes
// predate the Argon2id default. New installs should prefer [Argon2].
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a bcrypt hasher with the given cost. A zero cost
// selects the library default.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.New("bcrypt cost out of range")
	}

	return &Bcrypt{cost: cost}, nil
}

// Hash generates a salted bcrypt hash; the salt is embedded in the output.
func (b *Bcrypt) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares password against the stored hash. Mismatch is
// (false, nil); a hash bcrypt cannot parse is (false, ErrMalformedHash).
func (b *Bcrypt) Verify(password, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrMalformedHash
	}
}
