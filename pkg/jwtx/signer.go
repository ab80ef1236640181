package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrIssuer      = errors.New("jwtx: unexpected issuer")
	ErrSignature   = errors.New("jwtx: signature verification failed")
)

// Verifier verifies a compact JWT and returns its claims. The HTTP authn
// middleware depends only on this, so tests can substitute stubs.
type Verifier interface {
	Verify(raw string) (Claims, error)
}

// Signer signs and verifies session tokens with a single Ed25519 key.
// Outlay rotates by restarting with a new key file, so no key set or kid
// lookup is needed.
type Signer struct {
	kid string
	key ed25519.PrivateKey
	pub ed25519.PublicKey
}

// NewSigner generates an ephemeral Ed25519 signer. Tokens do not survive
// a process restart in this mode.
func NewSigner(kid string) (*Signer, error) {
	pub, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate key: %w", err)
	}
	return &Signer{kid: kid, key: key, pub: pub}, nil
}

// NewSignerFromPEM loads an Ed25519 private key in PKCS8 PEM form.
func NewSignerFromPEM(kid string, pemKey []byte) (*Signer, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, errors.New("jwtx: expected PKCS8 PRIVATE KEY PEM block")
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}
	key, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not an Ed25519 private key")
	}

	return &Signer{
		kid: kid,
		key: key,
		pub: key.Public().(ed25519.PublicKey),
	}, nil
}

// MarshalPEM returns the private key in PKCS8 PEM form for persistence.
func (s *Signer) MarshalPEM() ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(s.key)
	if err != nil {
		return nil, fmt.Errorf("jwtx: marshal PKCS8: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// KID returns the key identifier placed in token headers.
func (s *Signer) KID() string { return s.kid }

// IsReady reports whether a signing key is loaded.
func (s *Signer) IsReady() bool {
	return s != nil && len(s.key) == ed25519.PrivateKeySize
}

// Sign turns claims into a signed compact JWT.
func (s *Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// Verify parses and verifies a compact JWT produced by this signer. Time
// validation is left to Claims.ValidateExpiry so callers can apply leeway
// policy themselves.
func (s *Signer) Verify(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("jwtx: unexpected signing method %q", t.Method.Alg())
		}
		return s.pub, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return Claims{}, ErrSignature
	}
	return claims, nil
}
