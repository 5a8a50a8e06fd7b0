// Package token encodes internal numeric ids as opaque URL tokens so
// record references exposed to browsers cannot be enumerated.
package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
)

// InvalidTokenError indicates a token that was malformed, tampered with,
// or produced under a different key.
type InvalidTokenError struct {
	Message string
}

func (e *InvalidTokenError) Error() string { return e.Message }

// Codec encrypts ids with AES-256-GCM and renders them base64url.
// Tokens are non-deterministic (random nonce per Encode) but always decode
// back to the original id.
type Codec struct {
	gcm cipher.AEAD
}

// NewCodec creates a Codec from a hex-encoded 32-byte key.
func NewCodec(hexKey string) (*Codec, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode token key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("token key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return &Codec{gcm: gcm}, nil
}

// Encode returns an opaque URL-safe token for the given id.
func (c *Codec) Encode(id int64) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	var plain [8]byte
	binary.BigEndian.PutUint64(plain[:], uint64(id))
	sealed := c.gcm.Seal(nonce, nonce, plain[:], nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode recovers the id from a token produced by Encode. Any token this
// Codec did not produce fails with an InvalidTokenError.
func (c *Codec) Decode(tok string) (int64, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		return 0, &InvalidTokenError{Message: "malformed identifier"}
	}
	nonceSize := c.gcm.NonceSize()
	if len(sealed) < nonceSize {
		return 0, &InvalidTokenError{Message: "malformed identifier"}
	}
	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	plain, err := c.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil || len(plain) != 8 {
		return 0, &InvalidTokenError{Message: "invalid identifier"}
	}
	return int64(binary.BigEndian.Uint64(plain)), nil
}
