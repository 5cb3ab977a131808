package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	keyLength  = 32 // Length of the derived key
	saltLength = 16 // Length of the random salt
)

// Cost holds the Argon2id work parameters. Process-wide, set once at startup
// via SetCost and never changed afterwards; existing hashes always verify with
// the parameters embedded in their own encoding.
type Cost struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultCost follows the OWASP Argon2id baseline.
var DefaultCost = Cost{
	MemoryKiB:   19 * 1024,
	Iterations:  2,
	Parallelism: 1,
}

var cost = DefaultCost

var (
	// ErrPasswordMismatch reports a well-formed hash that does not match the
	// supplied password. Callers treat this as a client fault.
	ErrPasswordMismatch = errors.New("cryptox: password does not match")

	// ErrInvalidHash reports a stored hash that cannot be parsed. This is a
	// corrupt record, not a wrong password, and must not be conflated with
	// ErrPasswordMismatch in diagnostics.
	ErrInvalidHash = errors.New("cryptox: invalid password hash encoding")
)

// SetCost overrides the Argon2id work parameters. Call once during startup,
// before any hashing happens. Zero fields keep their defaults.
func SetCost(c Cost) {
	if c.MemoryKiB > 0 {
		cost.MemoryKiB = c.MemoryKiB
	}
	if c.Iterations > 0 {
		cost.Iterations = c.Iterations
	}
	if c.Parallelism > 0 {
		cost.Parallelism = c.Parallelism
	}
}

// HashPassword generates a PHC-format Argon2id hash string including salt and
// parameters. Two calls with the same password produce different encodings
// because the salt is random per call.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		cost.Iterations,
		cost.MemoryKiB,
		cost.Parallelism,
		keyLength,
	)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		cost.MemoryKiB,
		cost.Iterations,
		cost.Parallelism,
		b64Salt,
		b64Hash,
	), nil
}

// VerifyPassword compares a plaintext password against a PHC-style Argon2id
// hash. Returns nil on match, ErrPasswordMismatch on a clean mismatch, and an
// error wrapping ErrInvalidHash when the stored encoding is unusable.
func VerifyPassword(password, encodedHash string) error {
	params, salt, expected, err := decodeHash(encodedHash)
	if err != nil {
		return err
	}

	computed := argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		params.Iterations,
		params.MemoryKiB,
		params.Parallelism,
		uint32(len(expected)), // #nosec G115 - hash length is bounded by decode
	)

	if subtle.ConstantTimeCompare(computed, expected) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

// VerifyDummy runs a full Argon2id derivation against a throwaway salt and
// discards the result. Used to keep login timing uniform when the username
// does not exist.
func VerifyDummy(password string) {
	salt := make([]byte, saltLength)
	argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		cost.Iterations,
		cost.MemoryKiB,
		cost.Parallelism,
		keyLength,
	)
}

// decodeHash parses the PHC format: $argon2id$v=19$m=X,t=Y,p=Z$salt$hash.
func decodeHash(encodedHash string) (Cost, []byte, []byte, error) {
	parts := make([]string, 0, 6)
	start := 0
	for i := range len(encodedHash) {
		if encodedHash[i] == '$' {
			parts = append(parts, encodedHash[start:i])
			start = i + 1
		}
	}
	parts = append(parts, encodedHash[start:])

	// Expected structure: ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	if len(parts) != 6 {
		return Cost{}, nil, nil, fmt.Errorf("%w: expected 6 parts, got %d", ErrInvalidHash, len(parts))
	}
	if parts[1] != "argon2id" {
		return Cost{}, nil, nil, fmt.Errorf("%w: not argon2id", ErrInvalidHash)
	}
	if parts[2] != "v=19" {
		return Cost{}, nil, nil, fmt.Errorf("%w: wrong version", ErrInvalidHash)
	}

	var params Cost
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.MemoryKiB, &params.Iterations, &params.Parallelism); err != nil {
		return Cost{}, nil, nil, fmt.Errorf("%w: bad parameters: %v", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Cost{}, nil, nil, fmt.Errorf("%w: bad salt: %v", ErrInvalidHash, err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Cost{}, nil, nil, fmt.Errorf("%w: bad hash: %v", ErrInvalidHash, err)
	}

	return params, salt, expected, nil
}
