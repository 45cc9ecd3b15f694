package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/crypto/hkdf"
)

const (
	ModeCBC = "cbc"
	ModeGCM = "gcm"

	ivSize         = aes.BlockSize
	gcmNonceSize   = 12
	commitmentSize = 32
)

var (
	// ErrDecryptionFailed covers a wrong key, truncated or corrupted input and bad
	// padding alike. Callers must not be able to tell these apart.
	ErrDecryptionFailed  = errors.New("decryption failed")
	ErrUnknownCipherMode = errors.New("unknown cipher mode")
)

// FieldCipher encrypts and decrypts single text fields. Output is printable
// (standard base64) and differs on every call for the same input.
type FieldCipher interface {
	Encrypt(plaintext string, key []byte) (string, error)
	Decrypt(ciphertext string, key []byte) (string, error)
	Mode() string
}

// NewFieldCipher returns the cipher for mode. An empty mode selects CBC.
func NewFieldCipher(mode string) (FieldCipher, error) {
	switch mode {
	case ModeCBC, "":
		return CBCCipher{}, nil
	case ModeGCM:
		return GCMCipher{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCipherMode, mode)
	}
}

// CBCCipher is AES-256-CBC with PKCS#7 padding and a random IV prepended to the
// ciphertext. It has no integrity tag; tampering is only caught when it breaks
// the padding or the UTF-8 encoding of the result.
type CBCCipher struct {
	// Rand overrides crypto/rand.Reader when set.
	Rand io.Reader
}

func (c CBCCipher) Mode() string { return ModeCBC }

// Encrypt returns base64(IV || AES-CBC(pad(plaintext))).
func (c CBCCipher) Encrypt(plaintext string, key []byte) (string, error) {
	block, err := newBlock(key)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, ivSize+len(padded))
	iv := out[:ivSize]
	if _, err := io.ReadFull(randReader(c.Rand), iv); err != nil {
		return "", fmt.Errorf("generating iv: %w", err)
	}

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[ivSize:], padded)
	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Every failure after key validation is ErrDecryptionFailed.
func (c CBCCipher) Decrypt(ciphertext string, key []byte) (string, error) {
	block, err := newBlock(key)
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	if len(data) < ivSize+aes.BlockSize || len(data)%aes.BlockSize != 0 {
		return "", ErrDecryptionFailed
	}

	iv, body := data[:ivSize], data[ivSize:]
	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, body)

	unpadded, ok := pkcs7Unpad(plain, aes.BlockSize)
	if !ok || !utf8.Valid(unpadded) {
		return "", ErrDecryptionFailed
	}
	return string(unpadded), nil
}

// GCMCipher is the hardened variant: AES-256-GCM under a subkey, preceded by a
// key commitment so a ciphertext only ever opens under the key that made it.
// Layout: base64(commitment || nonce || ciphertext+tag).
type GCMCipher struct {
	// Rand overrides crypto/rand.Reader when set.
	Rand io.Reader
}

func (c GCMCipher) Mode() string { return ModeGCM }

func (c GCMCipher) Encrypt(plaintext string, key []byte) (string, error) {
	aead, commitment, err := newCommittedGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(randReader(c.Rand), nonce); err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	out := make([]byte, 0, commitmentSize+gcmNonceSize+len(plaintext)+aead.Overhead())
	out = append(out, commitment...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, []byte(plaintext), commitment)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (c GCMCipher) Decrypt(ciphertext string, key []byte) (string, error) {
	aead, commitment, err := newCommittedGCM(key)
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(data) < commitmentSize+gcmNonceSize+aead.Overhead() {
		return "", ErrDecryptionFailed
	}
	if subtle.ConstantTimeCompare(data[:commitmentSize], commitment) != 1 {
		return "", ErrDecryptionFailed
	}

	nonce := data[commitmentSize : commitmentSize+gcmNonceSize]
	plain, err := aead.Open(nil, nonce, data[commitmentSize+gcmNonceSize:], commitment)
	if err != nil || !utf8.Valid(plain) {
		return "", ErrDecryptionFailed
	}
	return string(plain), nil
}

func newBlock(key []byte) (cipher.Block, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), KeySize)
	}
	return aes.NewCipher(key)
}

// newCommittedGCM splits key into an encryption subkey and a commitment value with HKDF-SHA256.
func newCommittedGCM(key []byte) (cipher.AEAD, []byte, error) {
	if len(key) != KeySize {
		return nil, nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), KeySize)
	}

	encKey := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte("field-cipher/enc")), encKey); err != nil {
		return nil, nil, fmt.Errorf("deriving subkey: %w", err)
	}
	defer Wipe(encKey)

	commitment := make([]byte, commitmentSize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, nil, []byte("field-cipher/commit")), commitment); err != nil {
		return nil, nil, fmt.Errorf("deriving commitment: %w", err)
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}
	return aead, commitment, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(append(make([]byte, 0, len(data)+n), data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return data[:len(data)-n], true
}

func randReader(r io.Reader) io.Reader {
	if r != nil {
		return r
	}
	return rand.Reader
}
