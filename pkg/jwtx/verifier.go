package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrUnknownKID = errors.New("jwtx: unknown kid")
	ErrInvalidSig = errors.New("jwtx: invalid signature")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// HS256Verifier checks the signature first and only then the time based
// claims, so a forged token never reports ErrExpired.
type HS256Verifier struct {
	issuer string
	keys   map[string][]byte

	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

// NewVerifierHS256 accepts tokens signed by any of the given secrets. The
// first secret is normally the current signing secret; the rest are retired
// secrets kept around until their tokens have expired.
func NewVerifierHS256(issuer string, secrets ...[]byte) *HS256Verifier {
	keys := make(map[string][]byte, len(secrets))
	for _, s := range secrets {
		if len(s) == 0 {
			continue
		}
		keys[KeyID(s)] = append([]byte(nil), s...)
	}
	return &HS256Verifier{issuer: issuer, keys: keys}
}

func (v *HS256Verifier) Verify(token string) (Claims, error) {
	if token == "" {
		return Claims{}, ErrMalformed
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, v.keyFunc, opts...)
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	return claims, nil
}

// IsReady reports whether at least one verification key is loaded.
func (v *HS256Verifier) IsReady() bool { return len(v.keys) > 0 }

func (v *HS256Verifier) keyFunc(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, ErrUnknownKID
	}
	key, ok := v.keys[kid]
	if !ok {
		return nil, ErrUnknownKID
	}
	return key, nil
}

func (v *HS256Verifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownKID),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	default:
		return ErrMalformed
	}
}
