package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// sealedPrefix marks a stored value as ciphertext so plaintext rows written
// before a key was configured stay readable.
const sealedPrefix = "sealed:v1:"

var ErrShortCiphertext = errors.New("ciphertext too short")

// Sealer encrypts documents at rest with XChaCha20-Poly1305.
type Sealer struct {
	key []byte // 32 bytes
}

// NewSealer creates a sealer. key must be 32 bytes.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, errors.New("encryption key must be 32 bytes")
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Sealer{key: k}, nil
}

// Seal returns the prefixed, base64-encoded ciphertext with the nonce
// prepended. A nil Sealer returns the plaintext unchanged.
func (s *Sealer) Seal(plaintext []byte) (string, error) {
	if s == nil {
		return string(plaintext), nil
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	out := aead.Seal(nonce, nonce, plaintext, nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. Values without the sealed prefix are returned as-is.
func (s *Sealer) Open(stored string) ([]byte, error) {
	if !strings.HasPrefix(stored, sealedPrefix) {
		return []byte(stored), nil
	}
	if s == nil {
		return nil, errors.New("sealed value found but no encryption key configured")
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	if len(data) < aead.NonceSize() {
		return nil, ErrShortCiphertext
	}
	nonce, ct := data[:aead.NonceSize()], data[aead.NonceSize():]
	return aead.Open(nil, nonce, ct, nil)
}
