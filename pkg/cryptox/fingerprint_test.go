package cryptox

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var hex64 = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestNewBindingSecret(t *testing.T) {
	a, err := NewBindingSecret()
	require.NoError(t, err)
	require.Regexp(t, hex64, a)

	b, err := NewBindingSecret()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestContextHash(t *testing.T) {
	secret, err := NewBindingSecret()
	require.NoError(t, err)

	h := ContextHash(secret)
	require.Regexp(t, hex64, h)
	require.Equal(t, h, ContextHash(secret))
	require.NotEqual(t, secret, h)
}

func TestClientFingerprint(t *testing.T) {
	sig := ClientSignals{
		UserAgent:      "Mozilla/5.0",
		IP:             "203.0.113.7",
		AcceptLanguage: "en-AU",
	}

	t.Run("is a sha256 hex digest", func(t *testing.T) {
		require.Regexp(t, hex64, ClientFingerprint(sig))
	})

	t.Run("is salted per call", func(t *testing.T) {
		require.NotEqual(t, ClientFingerprint(sig), ClientFingerprint(sig))
	})

	t.Run("tolerates missing signals", func(t *testing.T) {
		fp := ClientFingerprint(ClientSignals{})
		require.Regexp(t, hex64, fp)
		require.NotEqual(t, fp, ClientFingerprint(ClientSignals{}))
	})
}
