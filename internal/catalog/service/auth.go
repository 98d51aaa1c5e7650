package service

import (
	"context"
	"errors"
	"time"

	"github.com/cataloghq/catalog/internal/catalog/domain"
	"github.com/cataloghq/catalog/internal/catalog/store"
	"github.com/cataloghq/catalog/pkg/cryptox"
	"github.com/cataloghq/catalog/pkg/jwtx"
	"github.com/cataloghq/catalog/pkg/slogx"
)

var (
	// ErrInvalidCredentials covers both unknown identity and password
	// mismatch; clients cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrInvalidToken reports a token that is absent from the registry or no
	// longer matches its resolved subject. The token may still be
	// cryptographically valid; registry presence is what makes it live.
	ErrInvalidToken = errors.New("invalid_token")
)

// AuthService issues, validates, and revokes sessions. Login writes the token
// pair's fingerprints into the registry; Authenticate is the per-request
// engine behind the HTTP gate; Logout deletes the registry record, killing
// the token before its natural expiry.
type AuthService struct {
	Store      store.Store
	Registry   store.Tokens
	Codec      *jwtx.Codec
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Login verifies credentials and issues a fresh access+refresh pair. Any
// prior session for the same subject is overwritten: one live token record
// per subject, a new login revokes the old device's token.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("login failed: unknown identity", "email", email)
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("login failed: password mismatch", "email", email)
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	access, err := s.Codec.Issue(user.Email, s.AccessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.Codec.IssueRefresh(user.Email, s.RefreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}

	rec := domain.TokenRecord{
		Subject:     user.Email,
		AccessHash:  cryptox.FingerprintToken(access),
		RefreshHash: cryptox.FingerprintToken(refresh),
	}
	if err := s.Registry.Upsert(ctx, rec); err != nil {
		return domain.TokenPair{}, err
	}

	l.Info("login succeeded", "email", email)
	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.AccessTTL.Seconds()),
	}, nil
}

// Logout revokes the presented access token. Revoking a token that was never
// registered, or was already revoked, propagates store.ErrNotFound.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	return s.Registry.DeleteByAccessHash(ctx, cryptox.FingerprintToken(accessToken))
}

// ValidateToken runs the stateless validation stages, in order: registry
// presence, cryptographic decode, registry/claims subject agreement. The
// ordering is deliberate: a revoked token fails before its signature is ever
// inspected, and an expired-but-registered token still fails on decode. The
// reconciled subject is returned for identity resolution.
func (s *AuthService) ValidateToken(ctx context.Context, raw string) (string, error) {
	rec, err := s.Registry.GetByAccessHash(ctx, cryptox.FingerprintToken(raw))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}

	claims, err := s.Codec.Decode(raw)
	if err != nil {
		// jwtx.ErrExpired / ErrMalformed / ErrUnsupported pass through so the
		// gate can map each to its own response.
		return "", err
	}

	if rec.Subject != claims.Subject {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// ResolvePrincipal maps a validated token subject onto the identity as
// currently stored. A deleted account invalidates outstanding tokens.
func (s *AuthService) ResolvePrincipal(ctx context.Context, raw, subject string) (domain.Principal, error) {
	user, err := s.Store.Users().GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Principal{}, ErrInvalidToken
		}
		return domain.Principal{}, err
	}

	// The claims subject must match the identity as currently stored; a
	// renamed account invalidates outstanding tokens.
	if !s.Codec.Validate(raw, user.Email) {
		return domain.Principal{}, ErrInvalidToken
	}

	return domain.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Roles:  user.RoleNames(),
	}, nil
}

// Authenticate runs the full per-request sequence: token validation followed
// by identity resolution. The HTTP gate drives the two stages separately so
// validation still runs when a principal is already attached.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (domain.Principal, error) {
	subject, err := s.ValidateToken(ctx, raw)
	if err != nil {
		return domain.Principal{}, err
	}
	return s.ResolvePrincipal(ctx, raw, subject)
}
