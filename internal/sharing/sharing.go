// Package sharing turns a vault entry into an independently encrypted,
// expiring snapshot that only the holder of a bearer secret can open.
//
// The engine never persists anything and never sees the bearer secret again
// after CreateShare returns it. It holds no mutable state and is safe for
// concurrent use.
package sharing

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/codec"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/crypto"
)

var (
	ErrShareExpired     = errors.New("share expired")
	ErrInvalidToken     = crypto.ErrInvalidShareToken
	ErrDecryptionFailed = crypto.ErrDecryptionFailed
)

// Share is an encrypted snapshot ready to be stored. It never contains the bearer secret.
type Share struct {
	UUID            string
	Sealed          codec.Sealed
	ExpiresAt       time.Time
	OriginalEntryID int64
	SecretID        string
	// KDFIterations is the PBKDF2 work factor the share key was derived with.
	KDFIterations int
}

// Created is the result of CreateShare. URLToken is the bearer secret in its
// URL path form and must be handed to the recipient, never stored.
type Created struct {
	Share    Share
	URLToken string
}

// Engine creates and redeems shares.
type Engine struct {
	codec *codec.Codec
	kdf   crypto.KeyDeriver
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now. Tests use it to pin expiry checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine returns an Engine that encrypts with c and derives share keys with kdf.
func NewEngine(c *codec.Codec, kdf crypto.KeyDeriver, opts ...Option) *Engine {
	e := &Engine{codec: c, kdf: kdf, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateShare decrypts entry under ownerKey, issues a capability token and
// re-encrypts the plaintext under the key derived from it. A share created
// with validityHours <= 0 is already expired.
func (e *Engine) CreateShare(entryID int64, entry codec.Sealed, ownerKey []byte, validityHours int) (Created, error) {
	tok, err := crypto.IssueToken()
	if err != nil {
		return Created{}, err
	}

	shareKey, err := e.kdf.DeriveShareKey(tok.SecretID, tok.BearerSecret)
	if err != nil {
		return Created{}, err
	}
	defer crypto.Wipe(shareKey)

	sealed, err := e.codec.Reseal(entry, ownerKey, shareKey)
	if err != nil {
		return Created{}, err
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return Created{}, fmt.Errorf("generating share uuid: %w", err)
	}

	return Created{
		Share: Share{
			UUID:            id.String(),
			Sealed:          sealed,
			ExpiresAt:       e.now().UTC().Add(time.Duration(validityHours) * time.Hour),
			OriginalEntryID: entryID,
			SecretID:        tok.SecretID,
		},
		URLToken: crypto.EncodeBearerForURL(tok.BearerSecret),
	}, nil
}

// RedeemShare opens s with the bearer secret taken from a share link.
// Expiry is checked before anything else, so an expired share fails closed
// even with the right token.
func (e *Engine) RedeemShare(s Share, urlToken string) (codec.Fields, error) {
	if !e.Active(s) {
		return codec.Fields{}, ErrShareExpired
	}

	bearer, err := crypto.DecodeBearerFromURL(urlToken)
	if err != nil {
		return codec.Fields{}, ErrInvalidToken
	}

	kdf := e.kdf
	if s.KDFIterations > 0 {
		kdf = crypto.NewKeyDeriver(s.KDFIterations)
	}
	shareKey, err := kdf.DeriveShareKey(s.SecretID, bearer)
	if err != nil {
		return codec.Fields{}, ErrDecryptionFailed
	}
	defer crypto.Wipe(shareKey)

	return e.codec.Unseal(s.Sealed, shareKey)
}

// Active reports whether s has not yet reached its expiry.
func (e *Engine) Active(s Share) bool {
	return s.ExpiresAt.After(e.now())
}
