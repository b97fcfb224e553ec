package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default lifetimes for the access and refresh credentials.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims are the access-token claims. The subject is the user id.
type Claims struct {
	jwt.RegisteredClaims

	// Role of the user at issuance (user, admin, super_admin, moderator, guest).
	Role string `json:"role"`

	// CtxHash is hex sha256 of the binding secret delivered alongside the
	// token. A token is only usable together with that secret.
	CtxHash string `json:"ctxHash"`
}

// NewAccessClaims builds minimally-correct claims.
func NewAccessClaims(
	subject, role, ctxHash string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role:    role,
		CtxHash: ctxHash,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// UserID is an alias for the subject.
func (c *Claims) UserID() string { return c.Subject }
