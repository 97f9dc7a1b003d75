// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyport Authors

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ErrIntegrity is returned when a ciphertext fails GCM authentication.
// Callers must treat it as tampering or corruption of the stored row, not as
// a transient failure.
var ErrIntegrity = errors.New("ciphertext integrity check failed")

// hkdfInfoCredentials domain-separates the credential data key from any
// future subkey derived from the same master key.
const hkdfInfoCredentials = "keyport/credential-encryption/v1"

// cipherService is the private implementation of [CipherService].
type cipherService struct {
	aead cipher.AEAD
}

// NewCipherService constructs a [CipherService] bound to the given master
// key. The AES-256 data key is derived from the master key via HKDF-SHA256
// with a fixed info label, so the raw master key itself is never used as a
// cipher key. The master key must be 32 bytes.
func NewCipherService(masterKey []byte) (CipherService, error) {
	if len(masterKey) != 32 {
		return nil, fmt.Errorf("master key must be 32 bytes, got %d", len(masterKey))
	}

	dataKey := make([]byte, 32)
	kdf := hkdf.New(sha256.New, masterKey, nil, []byte(hkdfInfoCredentials))
	if _, err := io.ReadFull(kdf, dataKey); err != nil {
		return nil, fmt.Errorf("derive data key: %w", err)
	}

	block, err := aes.NewCipher(dataKey)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return &cipherService{aead: gcm}, nil
}

// GenerateMasterKey implements [CipherService]. It reads 32 random bytes
// from the OS CSPRNG. Returns an error if the random read fails.
func (c *cipherService) GenerateMasterKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// GenerateMasterKey produces a key without requiring a constructed service.
// Used on first run, before the settings row that feeds [NewCipherService]
// exists.
func GenerateMasterKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Encrypt implements [CipherService]. It seals plaintext with AES-256-GCM
// under a fresh random nonce. Ciphertext and nonce are returned separately,
// both base64 (standard encoding), matching the two columns the store keeps
// per credential.
func (c *cipherService) Encrypt(plaintext string) (string, string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(sealed),
		base64.StdEncoding.EncodeToString(nonce),
		nil
}

// Decrypt implements [CipherService]. It base64-decodes both parts and opens
// the ciphertext. An authentication-tag mismatch (bit flip, wrong iv, wrong
// key) returns [ErrIntegrity] so the caller can surface the corruption
// loudly instead of handing back garbage.
func (c *cipherService) Decrypt(ciphertext, iv string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}

	nonce, err := base64.StdEncoding.DecodeString(iv)
	if err != nil {
		return "", fmt.Errorf("decode iv: %w", err)
	}
	if len(nonce) != c.aead.NonceSize() {
		return "", fmt.Errorf("iv must be %d bytes, got %d", c.aead.NonceSize(), len(nonce))
	}

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIntegrity, err)
	}

	return string(plaintext), nil
}
