package jwtx_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessiond/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var (
	currentSecret = bytes.Repeat([]byte("a"), 32)
	retiredSecret = bytes.Repeat([]byte("b"), 32)
	foreignSecret = bytes.Repeat([]byte("c"), 32)
)

func mustSigner(t *testing.T, secret []byte) *jwtx.HS256Signer {
	t.Helper()
	s, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)
	return s
}

func TestHS256_SignAndVerify(t *testing.T) {
	signer := mustSigner(t, currentSecret)
	verifier := jwtx.NewVerifierHS256("sessiond", currentSecret)

	claims := jwtx.NewAccessClaims("user-1", "user", "ctx", time.Minute, "sessiond", time.Now())
	token, err := signer.Sign(claims)
	require.NoError(t, err)
	require.Equal(t, "HS256", signer.Alg())

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "ctx", got.CtxHash)
	require.Equal(t, "user", got.Role)
}

func TestHS256_WeakSecret(t *testing.T) {
	_, err := jwtx.NewSignerHS256([]byte("short"))
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)
}

func TestHS256_RetiredSecretStillVerifies(t *testing.T) {
	old := mustSigner(t, retiredSecret)
	verifier := jwtx.NewVerifierHS256("sessiond", currentSecret, retiredSecret)

	token, err := old.Sign(jwtx.NewAccessClaims("u", "user", "c", time.Minute, "sessiond", time.Now()))
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.NoError(t, err)
}

func TestHS256_Failures(t *testing.T) {
	now := time.Now()
	verifier := jwtx.NewVerifierHS256("sessiond", currentSecret)
	signer := mustSigner(t, currentSecret)

	t.Run("unknown key", func(t *testing.T) {
		token, err := mustSigner(t, foreignSecret).Sign(
			jwtx.NewAccessClaims("u", "user", "c", time.Minute, "sessiond", now))
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("tampered payload", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewAccessClaims("u", "user", "c", time.Minute, "sessiond", now))
		require.NoError(t, err)

		other, err := signer.Sign(jwtx.NewAccessClaims("admin", "super_admin", "c", time.Minute, "sessiond", now))
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		forged := parts[0] + "." + strings.Split(other, ".")[1] + "." + parts[2]

		_, err = verifier.Verify(forged)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewAccessClaims("u", "user", "c", time.Minute, "sessiond", now.Add(-time.Hour)))
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("expired and forged reports signature", func(t *testing.T) {
		token, err := mustSigner(t, foreignSecret).Sign(
			jwtx.NewAccessClaims("u", "user", "c", time.Minute, "sessiond", now.Add(-time.Hour)))
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := signer.Sign(jwtx.NewAccessClaims("u", "user", "c", time.Minute, "someone-else", now))
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("algorithm none", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone,
			jwtx.NewAccessClaims("u", "user", "c", time.Minute, "sessiond", now))
		raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = verifier.Verify(raw)
		require.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.Verify("not.a.jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)

		_, err = verifier.Verify("")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestHS256_ClockOverride(t *testing.T) {
	signer := mustSigner(t, currentSecret)
	verifier := jwtx.NewVerifierHS256("sessiond", currentSecret)

	issued := time.Now()
	token, err := signer.Sign(jwtx.NewAccessClaims("u", "user", "c", 15*time.Minute, "sessiond", issued))
	require.NoError(t, err)

	verifier.Now = func() time.Time { return issued.Add(16 * time.Minute) }
	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)

	verifier.Now = func() time.Time { return issued.Add(14 * time.Minute) }
	_, err = verifier.Verify(token)
	require.NoError(t, err)
}
