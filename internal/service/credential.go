package service

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	ivLength      = 16
	authTagLength = 16
)

// CredentialResolver turns a stored credential reference into plaintext.
// The plaintext is never persisted or logged.
type CredentialResolver interface {
	Resolve(ref string) (string, error)
}

// aesCredentialResolver decrypts AES-256-GCM payloads stored as
// base64(iv || auth tag || ciphertext).
type aesCredentialResolver struct {
	key []byte
}

func NewCredentialResolver(base64Key string) (CredentialResolver, error) {
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, errors.New("encryption key must be 32 bytes when decoded from base64")
	}
	return &aesCredentialResolver{key: key}, nil
}

func (r *aesCredentialResolver) Resolve(ref string) (string, error) {
	combined, err := base64.StdEncoding.DecodeString(ref)
	if err != nil {
		return "", fmt.Errorf("invalid encrypted credential: %w", err)
	}
	if len(combined) < ivLength+authTagLength {
		return "", errors.New("encrypted credential is too short")
	}

	iv := combined[:ivLength]
	authTag := combined[ivLength : ivLength+authTagLength]
	ciphertext := combined[ivLength+authTagLength:]

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivLength)
	if err != nil {
		return "", err
	}

	// Go's GCM expects the tag appended to the ciphertext
	sealed := make([]byte, 0, len(ciphertext)+len(authTag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, authTag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt credential: %w", err)
	}

	return string(plaintext), nil
}
