// Package codec seals and unseals the five text fields of a vault entry with a
// field cipher, and scores the password before it is encrypted.
package codec

import (
	"errors"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/crypto"
)

// Fields is the plaintext view of a vault entry. URL is optional.
type Fields struct {
	Title    string `json:"title"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	URL      string `json:"url"`
}

// Sealed holds one ciphertext per field plus the plaintext complexity score.
// An empty URL stays empty rather than being encrypted.
type Sealed struct {
	Title      string
	Username   string
	Email      string
	Password   string
	URL        string
	Complexity int
}

// Codec composes a FieldCipher over the fixed set of vault fields.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	cipher crypto.FieldCipher
}

// New returns a Codec backed by c.
func New(c crypto.FieldCipher) *Codec {
	return &Codec{cipher: c}
}

// Cipher returns the underlying field cipher.
func (c *Codec) Cipher() crypto.FieldCipher {
	return c.cipher
}

// Seal scores f.Password and encrypts every field independently under key.
func (c *Codec) Seal(f Fields, key []byte) (Sealed, error) {
	s := Sealed{Complexity: crypto.Strength(f.Password)}

	targets := []struct {
		in  string
		out *string
	}{
		{f.Title, &s.Title},
		{f.Username, &s.Username},
		{f.Email, &s.Email},
		{f.Password, &s.Password},
	}
	for _, t := range targets {
		ct, err := c.cipher.Encrypt(t.in, key)
		if err != nil {
			return Sealed{}, err
		}
		*t.out = ct
	}

	if f.URL != "" {
		ct, err := c.cipher.Encrypt(f.URL, key)
		if err != nil {
			return Sealed{}, err
		}
		s.URL = ct
	}

	return s, nil
}

// Unseal decrypts all five fields. A failure on any field is reported as
// crypto.ErrDecryptionFailed without saying which one.
func (c *Codec) Unseal(s Sealed, key []byte) (Fields, error) {
	var f Fields

	targets := []struct {
		in  string
		out *string
	}{
		{s.Title, &f.Title},
		{s.Username, &f.Username},
		{s.Email, &f.Email},
		{s.Password, &f.Password},
	}
	for _, t := range targets {
		pt, err := c.cipher.Decrypt(t.in, key)
		if err != nil {
			return Fields{}, opaque(err)
		}
		*t.out = pt
	}

	if s.URL != "" {
		pt, err := c.cipher.Decrypt(s.URL, key)
		if err != nil {
			return Fields{}, opaque(err)
		}
		f.URL = pt
	}

	return f, nil
}

// Reseal moves a sealed bundle from one key to another. The complexity score
// is carried over, not recomputed.
func (c *Codec) Reseal(s Sealed, from, to []byte) (Sealed, error) {
	f, err := c.Unseal(s, from)
	if err != nil {
		return Sealed{}, err
	}
	out, err := c.Seal(f, to)
	if err != nil {
		return Sealed{}, err
	}
	out.Complexity = s.Complexity
	return out, nil
}

func opaque(err error) error {
	if errors.Is(err, crypto.ErrInvalidKeySize) {
		return err
	}
	return crypto.ErrDecryptionFailed
}
