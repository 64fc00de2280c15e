package token

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// ErrKeyMaterial marks any failure to load or parse the RSA keypair. It is
// a startup-only condition: once a Manager exists, key errors cannot occur.
var ErrKeyMaterial = errors.New("invalid signing key material")

// ParseKeyPair parses a PEM-encoded RSA private/public key pair. Errors
// wrap [ErrKeyMaterial] so callers can treat them as fatal configuration
// problems rather than runtime failures.
func ParseKeyPair(privatePEM, publicPEM []byte) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	if len(privatePEM) == 0 || len(publicPEM) == 0 {
		return nil, nil, fmt.Errorf("%w: missing PEM data", ErrKeyMaterial)
	}

	signKey, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: private key: %v", ErrKeyMaterial, err)
	}

	verifyKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: public key: %v", ErrKeyMaterial, err)
	}

	return signKey, verifyKey, nil
}

// LoadKeyPairFiles reads the two PEM files the deployment provides
// (conventionally private.pem and public.pem next to the binary). Absence
// of either file is fatal and reported through [ErrKeyMaterial].
func LoadKeyPairFiles(privatePath, publicPath string) (privatePEM, publicPEM []byte, err error) {
	privatePEM, err = os.ReadFile(privatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read %s: %v", ErrKeyMaterial, privatePath, err)
	}

	publicPEM, err = os.ReadFile(publicPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read %s: %v", ErrKeyMaterial, publicPath, err)
	}

	return privatePEM, publicPEM, nil
}
