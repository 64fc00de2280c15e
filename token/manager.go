package token

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultLeeway is the clock-skew tolerance applied to nbf and exp checks
// when Config.Leeway is zero. Both sides of the window get the same slack.
const DefaultLeeway = 60 * time.Second

// Config carries the immutable inputs of a [Manager]. Key material is
// PEM-encoded RSA; both halves must be present because the manager signs
// and verifies with the same process-wide keypair.
type Config struct {
	AccessTTL     time.Duration
	Leeway        time.Duration
	PrivateKeyPEM []byte
	PublicKeyPEM  []byte
}

// Subject identifies the user a token asserts. The three fields map 1:1 to
// the user_uuid / user_name / user_email claims of the wire format.
type Subject struct {
	UUID  string
	Name  string
	Email string
}

// Claims is the signed payload of an access token. The custom fields ride
// next to the registered iat/nbf/exp claims; the layout must stay stable so
// other services holding the public key can verify tokens independently.
type Claims struct {
	UserUUID  string `json:"user_uuid"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
	jwt.RegisteredClaims
}

// Manager mints and validates RS256 access tokens. It holds the parsed
// keypair for the process lifetime and is safe for concurrent use; nothing
// is mutated after NewManager returns.
type Manager struct {
	config    Config
	signKey   *rsa.PrivateKey
	verifyKey *rsa.PublicKey
}

// NewManager validates cfg and parses the PEM keypair. Malformed or missing
// key material is a construction-time error, never a per-request one.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway == 0 {
		cfg.Leeway = DefaultLeeway
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	signKey, verifyKey, err := ParseKeyPair(cfg.PrivateKeyPEM, cfg.PublicKeyPEM)
	if err != nil {
		return nil, err
	}

	return &Manager{
		config:    cfg,
		signKey:   signKey,
		verifyKey: verifyKey,
	}, nil
}

// Mint builds and signs an access token for sub with iat = nbf = now and
// exp = now + AccessTTL.
func (m *Manager) Mint(sub Subject) (string, error) {
	now := time.Now()
	claims := Claims{
		UserUUID:  sub.UUID,
		UserName:  sub.Name,
		UserEmail: sub.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(m.signKey)
}

// Parse verifies the signature and the nbf/exp window (with leeway) and
// returns the decoded claims. The error reports why validation failed;
// callers that only need a verdict can use [Manager.Validate].
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithLeeway(m.config.Leeway),
		jwt.WithExpirationRequired(),
	)

	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, errors.New("unexpected signing algorithm")
		}
		return m.verifyKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

// Validate is the boolean projection of [Manager.Parse]. It never panics on
// malformed input; any failure mode collapses to false.
func (m *Manager) Validate(tokenStr string) bool {
	_, err := m.Parse(tokenStr)
	return err == nil
}
