package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// tokenEntropy is the number of random bytes behind both halves of a capability token.
const tokenEntropy = 16

var ErrInvalidShareToken = errors.New("invalid share token")

// CapabilityToken pairs a stored identifier with a bearer secret that is never stored.
// Holding BearerSecret is both necessary and sufficient to re-derive the share key.
type CapabilityToken struct {
	SecretID     string
	BearerSecret string
}

// IssueToken draws a fresh identifier and bearer secret, each base64url without padding.
func IssueToken() (CapabilityToken, error) {
	id, err := randomURLString(tokenEntropy)
	if err != nil {
		return CapabilityToken{}, fmt.Errorf("generating secret id: %w", err)
	}
	secret, err := randomURLString(tokenEntropy)
	if err != nil {
		return CapabilityToken{}, fmt.Errorf("generating bearer secret: %w", err)
	}
	return CapabilityToken{SecretID: id, BearerSecret: secret}, nil
}

// DeriveShareKey re-derives the one-off share key. The bearer secret is the KDF
// secret and secretID||bearerSecret is the salt, so the key is reproducible from
// the pair alone and from nothing the server keeps.
func (d KeyDeriver) DeriveShareKey(secretID, bearerSecret string) ([]byte, error) {
	if secretID == "" || bearerSecret == "" {
		return nil, ErrKeyDerivationInputInvalid
	}
	return d.Derive(bearerSecret, []byte(secretID+bearerSecret))
}

// EncodeBearerForURL wraps the bearer secret for a URL path segment:
// base64url of its bytes with the padding stripped.
func EncodeBearerForURL(bearerSecret string) string {
	return strings.TrimRight(base64.URLEncoding.EncodeToString([]byte(bearerSecret)), "=")
}

// DecodeBearerFromURL restores stripped padding and unwraps a bearer secret
// produced by EncodeBearerForURL.
func DecodeBearerFromURL(segment string) (string, error) {
	if segment == "" {
		return "", ErrInvalidShareToken
	}
	if rem := len(segment) % 4; rem != 0 {
		segment += strings.Repeat("=", 4-rem)
	}

	raw, err := base64.URLEncoding.DecodeString(segment)
	if err != nil || len(raw) == 0 || !utf8.Valid(raw) {
		return "", ErrInvalidShareToken
	}
	return string(raw), nil
}

func randomURLString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
