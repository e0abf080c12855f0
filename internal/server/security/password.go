// Package security provides the password hasher and the recovery-code
// generator used by the authentication service.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PasswordHasher hashes plain passwords and verifies candidates against a
// stored hash. The algorithm choice stays behind this interface.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// Argon2Hasher implements PasswordHasher with argon2id. The encoded form is
// the usual $argon2id$v=19$m=...,t=...,p=...$<salt>$<hash> string, so the
// parameters travel with the hash and can change without invalidating old
// records.
type Argon2Hasher struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
}

func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{
		memory:      64 * 1024,
		iterations:  1,
		parallelism: 4,
		saltLength:  16,
		keyLength:   32,
	}
}

func (h *Argon2Hasher) Hash(plain string) (string, error) {
	salt := make([]byte, h.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("error generating salt: %v", err)
	}

	key := argon2.IDKey([]byte(plain), salt, h.iterations, h.memory, h.parallelism, h.keyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.memory, h.iterations, h.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))

	return encoded, nil
}

func (h *Argon2Hasher) Verify(plain, hash string) bool {
	salt, key, iterations, memory, parallelism, err := decodeHash(hash)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(plain), salt, iterations, memory, parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1
}

func decodeHash(encoded string) (salt, key []byte, iterations, memory uint32, parallelism uint8, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, errors.New("invalid hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, 0, 0, 0, errors.New("unsupported hash version")
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return nil, nil, 0, 0, 0, errors.New("malformed hash parameters")
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, nil, 0, 0, 0, err
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, nil, 0, 0, 0, err
	}

	return salt, key, iterations, memory, parallelism, nil
}
