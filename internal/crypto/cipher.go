// Package crypto wraps the extended-nonce AEAD primitive used to protect
// every frame exchanged between client and server.
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// KeySize is the size, in bytes, of the shared symmetric key.
	KeySize = chacha20poly1305.KeySize
	// NonceSize is the size, in bytes, of the XChaCha20-Poly1305 nonce.
	NonceSize = chacha20poly1305.NonceSizeX
	// Overhead is the size, in bytes, of the Poly1305 authentication tag
	// appended to every ciphertext.
	Overhead = chacha20poly1305.Overhead
)

var (
	ErrInvalidKey = errors.New("crypto: key must be 32 bytes")
	ErrSeal       = errors.New("crypto: seal failed")
	ErrOpen       = errors.New("crypto: open failed")
)

// Cipher performs authenticated encryption and decryption with a single
// 32-byte key, shared by both directions of a connection. It implements
// wire.AEAD.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher from a 32-byte key, as derived by
// internal/config.Config.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext under a freshly generated random nonce. The
// returned ciphertext is len(plaintext)+Overhead bytes.
func (c *Cipher) Encrypt(plaintext []byte) (nonce []byte, ciphertext []byte, err error) {
	nonce = make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSeal, err)
	}

	ciphertext = c.aead.Seal(nil, nonce, plaintext, nil)
	return nonce, ciphertext, nil
}

// Decrypt opens ciphertext under nonce, returning ErrOpen if the
// authentication tag does not verify or the input is malformed.
func (c *Cipher) Decrypt(nonce, ciphertext []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes", ErrOpen, NonceSize)
	}

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	return plaintext, nil
}
