// Package auth guards the REST API with a single shared API key. Only a
// bcrypt hash of the key is kept on disk.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const keyBytes = 32

// KeyManager owns the API key hash file.
type KeyManager struct {
	path       string
	warnDays   int
	rotateDays int

	mu       sync.RWMutex
	hash     []byte
	verified [sha256.Size]byte
	cached   bool
}

// NewKeyManager loads the key hash at path, creating a new key when the file
// is missing and rotating it when it is older than rotateDays. A newly
// generated key is logged once; it cannot be recovered afterwards.
func NewKeyManager(path string, warnDays, rotateDays int) (*KeyManager, error) {
	km := &KeyManager{path: path, warnDays: warnDays, rotateDays: rotateDays}

	hash, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if _, err := km.Rotate(); err != nil {
			return nil, err
		}
		return km, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	km.hash = hash

	age, err := km.AgeInDays()
	if err != nil {
		return nil, err
	}
	if rotateDays > 0 && age > rotateDays {
		log.Printf("API key is %d days old, rotating it", age)
		if _, err := km.Rotate(); err != nil {
			return nil, err
		}
	} else if warnDays > 0 && age > warnDays {
		log.Printf("Warning: API key is %d days old, consider refreshing it", age)
	}
	return km, nil
}

// Rotate replaces the key with a freshly generated one and returns it.
func (km *KeyManager) Rotate() (string, error) {
	buf := make([]byte, keyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	key := base64.RawURLEncoding.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}
	if err := writeReadOnly(km.path, hash); err != nil {
		return "", err
	}

	km.mu.Lock()
	km.hash = hash
	km.cached = false
	km.mu.Unlock()

	log.Println("==================================================")
	log.Println("New API key generated. It is shown only once:")
	log.Printf("API key: %s", key)
	log.Println("==================================================")
	return key, nil
}

// Validate reports whether token is the current key.
func (km *KeyManager) Validate(token string) bool {
	if token == "" {
		return false
	}
	sum := sha256.Sum256([]byte(token))

	km.mu.RLock()
	hash := km.hash
	if km.cached && subtle.ConstantTimeCompare(sum[:], km.verified[:]) == 1 {
		km.mu.RUnlock()
		return true
	}
	km.mu.RUnlock()

	if bcrypt.CompareHashAndPassword(hash, []byte(token)) != nil {
		return false
	}

	km.mu.Lock()
	// Skip caching if the key was rotated during the comparison.
	if subtle.ConstantTimeCompare(hash, km.hash) == 1 {
		km.verified = sum
		km.cached = true
	}
	km.mu.Unlock()
	return true
}

// AgeInDays returns the number of whole days since the key was written.
func (km *KeyManager) AgeInDays() (int, error) {
	info, err := os.Stat(km.path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat key file: %w", err)
	}
	return int(time.Since(info.ModTime()).Hours() / 24), nil
}

// NeedsWarning reports whether the key is past the warning age.
func (km *KeyManager) NeedsWarning() bool {
	age, err := km.AgeInDays()
	return err == nil && km.warnDays > 0 && age > km.warnDays
}

func writeReadOnly(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	// The previous file is read-only, so it has to go before the write.
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove old key file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o400); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}
