package domain

import "time"

// TokenPair is what a successful login returns: the short-lived access token
// and the longer-lived refresh token, both signed JWTs.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"` // "Bearer"
	ExpiresIn    int    `json:"expires_in,omitempty"` // seconds until access expiry
}

// TokenRecord is the registry row pairing a subject with its live token
// fingerprints. At most one record exists per subject: a new login replaces
// the previous record, revoking the old access token for lookup purposes even
// though it stays cryptographically valid until natural expiry.
type TokenRecord struct {
	Subject     string
	AccessHash  string // SHA-256 fingerprint, never the raw token
	RefreshHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
