package jwtx

import (
	"errors"
)

// Verifier validates a token string and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// NewVerifier creates a verifier for the given algorithm and secret. The
// issuer is enforced when non-empty.
func NewVerifier(alg string, secret []byte, issuer string) (Verifier, error) {
	switch alg {
	case "HS256":
		return newHS256Verifier(secret, issuer)
	default:
		return nil, ErrUnsupportedAlg
	}
}
