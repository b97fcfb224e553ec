package cryptox

import (
	"strings"

	"github.com/google/uuid"
)

// BindingSecretSize is the raw size of a per-login binding secret.
const BindingSecretSize = 32

// ClientSignals are the request attributes mixed into a client fingerprint.
type ClientSignals struct {
	UserAgent      string
	IP             string
	AcceptLanguage string
}

// NewBindingSecret returns a fresh 64 char hex binding secret. Only its
// ContextHash is ever embedded in an access token.
func NewBindingSecret() (string, error) {
	return RandomHex(BindingSecretSize)
}

// ContextHash is the value an access token carries for its binding secret.
func ContextHash(bindingSecret string) string {
	return SHA256Hex(bindingSecret)
}

// ClientFingerprint derives the per-login fingerprint nonce that is bound to
// a refresh credential.
//
// A random salt is mixed in, so the same client never produces the same
// value twice. The result must be treated as an opaque server issued nonce
// and is never re-derived to validate a client.
func ClientFingerprint(sig ClientSignals) string {
	ua := sig.UserAgent
	if ua == "" {
		ua = uuid.NewString()
	}
	ip := sig.IP
	if ip == "" {
		ip = uuid.NewString()
	}

	raw := strings.Join([]string{ua, ip, sig.AcceptLanguage, uuid.NewString()}, "|")
	return SHA256Hex(raw)
}
