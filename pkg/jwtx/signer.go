package jwtx

import "errors"

// Signer is our interface for anything that can sign access tokens.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
	Validate() error
}

// SupportedAlgorithms lists the signing algorithms this service accepts in
// configuration. The codec is symmetric-key only: a single process-wide
// secret signs and verifies.
var SupportedAlgorithms = []string{"HS256"}

// ErrUnsupportedAlg reports a configured algorithm outside SupportedAlgorithms.
var ErrUnsupportedAlg = errors.New("jwtx: unsupported signing algorithm")

// NewSigner creates a signer for the given algorithm and secret.
func NewSigner(alg string, secret []byte) (Signer, error) {
	switch alg {
	case "HS256":
		return newHS256Signer(secret)
	default:
		return nil, ErrUnsupportedAlg
	}
}
