package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants. Access tokens stay short-lived; refresh tokens
// exist to extend sessions and can afford a longer window.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

var (
	// ErrMalformed reports a token whose structure or signature could not be
	// parsed or verified.
	ErrMalformed = errors.New("jwtx: malformed token")

	// ErrExpired reports a token past its exp claim.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrUnsupported reports a token using an algorithm or format the codec
	// does not recognise.
	ErrUnsupported = errors.New("jwtx: unsupported token")
)

// sentinel surfaced through the parser's keyfunc when the token header names
// a signing method other than EdDSA.
var errAlgMismatch = errors.New("jwtx: signing method mismatch")

// Claims are the token claims the codec embeds and returns. Only the
// registered set is used; subject identity is carried in "sub".
type Claims struct {
	jwt.RegisteredClaims
}

// Codec signs and verifies Ed25519 JWTs with a single keypair. It is safe for
// concurrent use; issuing and decoding are side-effect free.
type Codec struct {
	kid    string
	key    ed25519.PrivateKey
	pub    ed25519.PublicKey
	issuer string
}

// NewCodec loads an Ed25519 private key from PEM bytes (PKCS8).
func NewCodec(kid string, pemKey []byte, issuer string) (*Codec, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for Ed25519 key")
	}
	if block.Type != "PRIVATE KEY" {
		return nil, fmt.Errorf("jwtx: expected PRIVATE KEY, got %q (Ed25519 requires PKCS8)", block.Type)
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}

	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not an Ed25519 private key")
	}

	return &Codec{
		kid:    kid,
		key:    key,
		pub:    key.Public().(ed25519.PublicKey),
		issuer: issuer,
	}, nil
}

// NewEphemeralCodec generates a fresh Ed25519 keypair. Tokens issued by an
// ephemeral codec do not survive a restart, which is fine for dev and tests.
func NewEphemeralCodec(kid, issuer string) (*Codec, error) {
	pub, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate keypair: %w", err)
	}
	return &Codec{kid: kid, key: key, pub: pub, issuer: issuer}, nil
}

// KID returns the key identifier stamped into token headers.
func (c *Codec) KID() string { return c.kid }

// Issue signs a token binding subject to an expiry of now + ttl.
func (c *Codec) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = c.kid
	return t.SignedString(c.key)
}

// IssueRefresh signs a refresh token binding subject to an expiry of
// now + ttl. Refresh tokens use the same signing mechanism as access tokens;
// only the lifetime differs, so holders of either can be verified by Decode.
func (c *Codec) IssueRefresh(subject string, ttl time.Duration) (string, error) {
	return c.Issue(subject, ttl)
}

// Decode parses and verifies a token string, returning its claims.
//
// Failures are classified: ErrExpired when the exp claim has passed,
// ErrUnsupported when the token names a signing method the codec does not
// handle, and ErrMalformed for everything that cannot be parsed or whose
// signature does not verify.
func (c *Codec) Decode(token string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithIssuedAt())

	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodEdDSA.Alg() {
			return nil, fmt.Errorf("%w: %s", errAlgMismatch, t.Method.Alg())
		}
		return c.pub, nil
	})
	if err != nil {
		return Claims{}, classify(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrMalformed
	}
	return *claims, nil
}

// Validate reports whether token decodes cleanly and its subject matches
// expected exactly. Identity comparison is case-sensitive.
func (c *Codec) Validate(token, expected string) bool {
	claims, err := c.Decode(token)
	if err != nil {
		return false
	}
	return claims.Subject == expected
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, errAlgMismatch):
		return ErrUnsupported
	default:
		return ErrMalformed
	}
}
