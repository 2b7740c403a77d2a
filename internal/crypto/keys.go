package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for the vault storage key
const (
	// Argon2Time - iteration count (time cost)
	Argon2Time = 1
	// Argon2Memory - memory in KB (64MB)
	Argon2Memory = 64 * 1024
	// Argon2Threads - parallelism
	Argon2Threads = 4
	// SaltSize - salt size in bytes
	SaltSize = 32
)

// GenerateSalt returns a cryptographically random salt
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// GenerateSaltBase64 returns a cryptographically random salt, base64-encoded
func GenerateSaltBase64() (string, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// DeriveStorageKey derives the 32-byte key used to seal credentials at rest.
// The device secret is an installation-scoped random value supplied by the
// host application (platform keystore where available); the salt is generated
// once per installation and persisted next to the sealed data.
func DeriveStorageKey(deviceSecret string, salt []byte) ([]byte, error) {
	if deviceSecret == "" {
		return nil, fmt.Errorf("device secret cannot be empty")
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt must be %d bytes, got %d", SaltSize, len(salt))
	}

	key := argon2.IDKey([]byte(deviceSecret), salt, Argon2Time, Argon2Memory, Argon2Threads, KeySize)
	return key, nil
}

// DeriveStorageKeyFromBase64Salt derives the storage key from a base64 salt
func DeriveStorageKeyFromBase64Salt(deviceSecret, saltBase64 string) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(saltBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	return DeriveStorageKey(deviceSecret, salt)
}
