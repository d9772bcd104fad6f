package services

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// ErrUndecryptable indicates stored credential bytes could not be opened with the configured key
var ErrUndecryptable = errors.New("credential data cannot be decrypted")

// Encryptor provides AES-256-GCM encryption/decryption for stored credential fields.
// If nil, all operations are no-ops (pass-through).
type Encryptor struct {
	gcm cipher.AEAD
}

// NewEncryptor creates an Encryptor from a hex-encoded 32-byte key.
// Returns nil if hexKey is empty (encryption disabled).
func NewEncryptor(hexKey string) (*Encryptor, error) {
	if hexKey == "" {
		return nil, nil
	}

	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid encryption key: must be 32 bytes (64 hex chars), got %d bytes", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Encryptor{gcm: gcm}, nil
}

// Encrypt returns nonce || ciphertext || tag.
// If encryptor is nil, returns plaintext unchanged.
func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	if e == nil {
		return plaintext, nil
	}

	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return e.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens data produced by Encrypt. Rows written before encryption was
// enabled hold a bare JSON object and are returned as-is; anything else that
// fails authentication is ErrUndecryptable.
func (e *Encryptor) Decrypt(data []byte) ([]byte, error) {
	if e == nil {
		return data, nil
	}

	nonceSize := e.gcm.NonceSize()
	if len(data) >= nonceSize+e.gcm.Overhead() {
		plaintext, err := e.gcm.Open(nil, data[:nonceSize], data[nonceSize:], nil)
		if err == nil {
			return plaintext, nil
		}
	}

	if isPlainJSONObject(data) {
		return data, nil
	}
	return nil, ErrUndecryptable
}

func isPlainJSONObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) >= 2 && trimmed[0] == '{' && trimmed[len(trimmed)-1] == '}'
}
