package service

import (
	"errors"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/auth/domain"
	"github.com/aussiebroadwan/sessiond/internal/auth/metrics"
	"github.com/aussiebroadwan/sessiond/pkg/cryptox"
	"github.com/aussiebroadwan/sessiond/pkg/jwtx"
)

// AccessGrant is a freshly signed access token together with the raw binding
// secret it is bound to. The binding secret is handed to the client once and
// never stored.
type AccessGrant struct {
	Token         string
	BindingSecret string
	ExpiresAt     time.Time
}

// AccessService issues and checks short-lived access tokens. It is stateless
// and safe for concurrent use once constructed.
type AccessService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Issuer   string
	TTL      time.Duration

	// Now overrides the issuing clock, mostly for tests.
	Now func() time.Time
}

// IssueAccess signs a token for the user carrying the hash of a new binding
// secret.
func (s *AccessService) IssueAccess(userID string, role domain.Role) (AccessGrant, error) {
	binding, err := cryptox.NewBindingSecret()
	if err != nil {
		return AccessGrant{}, err
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}

	claims := jwtx.NewAccessClaims(
		userID,
		string(role),
		cryptox.ContextHash(binding),
		ttl,
		s.Issuer,
		s.now(),
	)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return AccessGrant{}, err
	}

	return AccessGrant{
		Token:         token,
		BindingSecret: binding,
		ExpiresAt:     claims.ExpiresAt.Time,
	}, nil
}

// VerifyAccess checks signature and lifetime first, then requires the
// presented binding secret to hash to the token's ctxHash.
func (s *AccessService) VerifyAccess(token, bindingSecret string) (jwtx.Claims, error) {
	claims, err := s.Verifier.Verify(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			metrics.AccessVerifications.WithLabelValues(metrics.ResultExpired).Inc()
			return jwtx.Claims{}, ErrExpired
		}
		metrics.AccessVerifications.WithLabelValues(metrics.ResultBadSignature).Inc()
		return jwtx.Claims{}, ErrBadSignature
	}

	if !cryptox.EqualHex(claims.CtxHash, cryptox.ContextHash(bindingSecret)) || bindingSecret == "" {
		metrics.AccessVerifications.WithLabelValues(metrics.ResultContextMismatch).Inc()
		return jwtx.Claims{}, ErrContextMismatch
	}

	metrics.AccessVerifications.WithLabelValues(metrics.ResultSuccess).Inc()
	return claims, nil
}

func (s *AccessService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
