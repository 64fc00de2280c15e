package session

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// TokenLength is the fixed length of generated refresh tokens.
const TokenLength = 32

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewToken returns a fresh opaque refresh token: TokenLength alphanumeric
// characters drawn from crypto/rand. Collisions are treated as negligible
// and not guarded against. Fails only if the entropy source does.
func NewToken() (string, error) {
	var b strings.Builder
	b.Grow(TokenLength)

	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := 0; i < TokenLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(tokenAlphabet[n.Int64()])
	}

	return b.String(), nil
}
