// Package auth implements the optional password handshake of the control
// API and the encrypted connection that follows it.
package auth

import (
	"crypto/pbkdf2"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	GeneratedKeyLength = 20
	Base62Chars        = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	PBKDF2Iterations   = 100000
	PBKDF2Salt         = "viashift-key-v1"
	sessionContext     = "viashift-session-v1"
)

// ErrEmptyPassword is returned when deriving a key from an empty password.
var ErrEmptyPassword = errors.New("auth: password cannot be empty")

// GenerateKey creates a random base62 password.
func GenerateKey() (string, error) {
	random := make([]byte, GeneratedKeyLength)
	if _, err := rand.Read(random); err != nil {
		return "", err
	}
	key := make([]byte, GeneratedKeyLength)
	for i, b := range random {
		key[i] = Base62Chars[int(b)%len(Base62Chars)]
	}
	return string(key), nil
}

// DeriveKey stretches a password to a 32 byte key.
func DeriveKey(password string) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	return pbkdf2.Key(sha256.New, password, []byte(PBKDF2Salt), PBKDF2Iterations, 32)
}

// DeriveSessionKey mixes the long-term key with both nonces.
func DeriveSessionKey(key, serverNonce, clientNonce []byte) []byte {
	h := sha256.New()
	h.Write(key)
	h.Write(serverNonce)
	h.Write(clientNonce)
	h.Write([]byte(sessionContext))
	return h.Sum(nil)
}

// LoadOrCreateKeyFile returns the password stored at path. If the file does
// not exist, a new password is generated and written with owner-only
// permissions; created reports that case.
func LoadOrCreateKeyFile(path string) (password string, created bool, err error) {
	data, err := os.ReadFile(path)
	if err == nil {
		password = strings.TrimSpace(string(data))
		if password == "" {
			return "", false, fmt.Errorf("key file %s is empty", path)
		}
		return password, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", false, fmt.Errorf("read key file: %w", err)
	}

	password, err = GenerateKey()
	if err != nil {
		return "", false, fmt.Errorf("generate password: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", false, fmt.Errorf("create key file dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(password), 0o600); err != nil {
		return "", false, fmt.Errorf("write key file: %w", err)
	}
	return password, true, nil
}
