package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the length in bytes of every symmetric key derived or used by this package.
	KeySize = 32

	// SaltSize is the length of the per-user salt generated at account creation.
	SaltSize = 16

	// DefaultKDFIterations is the PBKDF2 work factor; callers may raise it but never lower it.
	DefaultKDFIterations = 100000
)

var (
	ErrKeyDerivationInputInvalid = errors.New("key derivation requires a non-empty secret and salt")
	ErrInvalidKeySize            = errors.New("invalid key size")
)

// KeyDeriver turns a low-entropy secret and a salt into a KeySize-byte key
// using PBKDF2-HMAC-SHA256.
type KeyDeriver struct {
	iterations int
}

// NewKeyDeriver returns a KeyDeriver using the given iteration count.
// Counts below DefaultKDFIterations are raised to it.
func NewKeyDeriver(iterations int) KeyDeriver {
	if iterations < DefaultKDFIterations {
		iterations = DefaultKDFIterations
	}
	return KeyDeriver{iterations: iterations}
}

// Iterations reports the effective PBKDF2 iteration count.
func (d KeyDeriver) Iterations() int {
	if d.iterations < DefaultKDFIterations {
		return DefaultKDFIterations
	}
	return d.iterations
}

// Derive is deterministic: the same secret and salt always yield the same key.
func (d KeyDeriver) Derive(secret string, salt []byte) ([]byte, error) {
	if secret == "" || len(salt) == 0 {
		return nil, ErrKeyDerivationInputInvalid
	}
	return pbkdf2.Key([]byte(secret), salt, d.Iterations(), KeySize, sha256.New), nil
}

// DeriveMasterKey derives a user's session key with the default work factor.
func DeriveMasterKey(secret string, salt []byte) ([]byte, error) {
	return NewKeyDeriver(DefaultKDFIterations).Derive(secret, salt)
}

// NewSalt returns SaltSize fresh random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	return salt, nil
}

// Wipe zeroes b in place. Nil-safe.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
